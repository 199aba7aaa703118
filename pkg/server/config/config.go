/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config resolves the server configuration from flags, the
// environment, an optional YAML file and defaults, in that order
package config

import (
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/dirs"
	"github.com/researchos/researchos/pkg/server/blob"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/mailer"
	"gopkg.in/yaml.v2"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultUploadDirname is the default directory name for local uploads
	DefaultUploadDirname = "uploads"

	// BlobBackendLocal keeps uploads on the local disk
	BlobBackendLocal = "local"
	// BlobBackendS3 keeps uploads in an S3 compatible bucket
	BlobBackendS3 = "s3"

	gmailHost = "smtp.gmail.com"
	gmailPort = 587
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = dirs.DataFile(DefaultDBFilename)
	// DefaultUploadDir is the default directory for local uploads
	DefaultUploadDir = dirs.DataFile(DefaultUploadDirname)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrDBDriverInvalid is an error for a database driver other than sqlite or postgres
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrBaseURLInvalid is an error for an incomplete configuration with invalid base url
	ErrBaseURLInvalid = errors.New("Invalid BaseURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrSMTPPortInvalid is an error for a non numeric SMTP port
	ErrSMTPPortInvalid = errors.New("Invalid SMTP port")
	// ErrBlobBackendInvalid is an error for an unknown blob backend
	ErrBlobBackendInvalid = errors.New("Invalid blob backend")
	// ErrS3MissingBucket is an error for the s3 backend without a bucket
	ErrS3MissingBucket = errors.New("S3 bucket is empty")
)

// File is the content of the optional YAML configuration file
type File struct {
	AppEnv              string `yaml:"appEnv"`
	Port                string `yaml:"port"`
	BaseURL             string `yaml:"baseUrl"`
	DBDriver            string `yaml:"dbDriver"`
	DBPath              string `yaml:"dbPath"`
	DisableRegistration bool   `yaml:"disableRegistration"`
	LogLevel            string `yaml:"logLevel"`
	EmailFrom           string `yaml:"emailFrom"`
	SMTP                struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"smtp"`
	Blob struct {
		Backend   string `yaml:"backend"`
		UploadDir string `yaml:"uploadDir"`
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
		PublicURL string `yaml:"publicUrl"`
	} `yaml:"blob"`
	LLM struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"llm"`
	CSRFKey string `yaml:"csrfKey"`
}

// ReadFile parses the YAML configuration file at path
func ReadFile(path string) (File, error) {
	var f File

	b, err := os.ReadFile(path)
	if err != nil {
		return f, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, errors.Wrapf(err, "parsing config file %s", path)
	}

	return f, nil
}

// LoadEnvFile loads the variables of a .env file into the environment
// without overriding the ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// pick returns the first non-empty of value, the env vars, fileVal and defaultVal
func pick(value, fileVal, defaultVal string, envKeys ...string) string {
	if value != "" {
		return value
	}
	for _, k := range envKeys {
		if env := os.Getenv(k); env != "" {
			return env
		}
	}
	if fileVal != "" {
		return fileVal
	}

	return defaultVal
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	BaseURL             string
	DisableRegistration bool
	Port                string
	DBDriver            string
	DBPath              string
	LogLevel            string

	SMTP      mailer.SMTPParams
	EmailFrom string

	BlobBackend string
	UploadDir   string
	S3          blob.S3Params

	LLMURL   string
	LLMKey   string
	LLMModel string

	CSRFKey string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	BaseURL             string
	DBDriver            string
	DBPath              string
	DisableRegistration bool
	LogLevel            string
	// ConfigPath is the optional YAML file. RESEARCHOS_CONFIG is used when empty.
	ConfigPath string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables, the config
// file and defaults.
func New(p Params) (Config, error) {
	var f File
	if path := pick(p.ConfigPath, "", "", "RESEARCHOS_CONFIG"); path != "" {
		var err error
		if f, err = ReadFile(path); err != nil {
			return Config{}, err
		}
	}

	c := Config{
		AppEnv:              pick(p.AppEnv, f.AppEnv, AppEnvProduction, "APP_ENV"),
		Port:                pick(p.Port, f.Port, "3001", "PORT"),
		BaseURL:             pick(p.BaseURL, f.BaseURL, "http://localhost:3001", "BASE_URL"),
		DBDriver:            pick(p.DBDriver, f.DBDriver, database.DriverSQLite, "DB_DRIVER"),
		DBPath:              pick(p.DBPath, f.DBPath, DefaultDBPath, "DB_PATH"),
		DisableRegistration: p.DisableRegistration || readBoolEnv("DISABLE_REGISTRATION") || f.DisableRegistration,
		LogLevel:            pick(p.LogLevel, f.LogLevel, "info", "LOG_LEVEL"),

		BlobBackend: pick("", f.Blob.Backend, BlobBackendLocal, "BLOB_BACKEND"),
		UploadDir:   pick("", f.Blob.UploadDir, DefaultUploadDir, "UPLOAD_DIR"),
		S3: blob.S3Params{
			Endpoint:  pick("", f.Blob.Endpoint, "", "S3_ENDPOINT"),
			Region:    pick("", f.Blob.Region, "us-east-1", "S3_REGION"),
			Bucket:    pick("", f.Blob.Bucket, "", "S3_BUCKET"),
			AccessKey: pick("", f.Blob.AccessKey, "", "S3_ACCESS_KEY"),
			SecretKey: pick("", f.Blob.SecretKey, "", "S3_SECRET_KEY"),
			PublicURL: pick("", f.Blob.PublicURL, "", "S3_PUBLIC_URL"),
		},

		LLMURL:   pick("", f.LLM.URL, "", "LLM_API_URL"),
		LLMKey:   pick("", f.LLM.APIKey, "", "LLM_API_KEY", "GROQ_API_KEY"),
		LLMModel: pick("", f.LLM.Model, "", "LLM_MODEL"),

		CSRFKey: pick("", f.CSRFKey, "", "CSRF_KEY"),
	}

	smtp, from, err := smtpConfig(f)
	if err != nil {
		return Config{}, err
	}
	c.SMTP = smtp
	c.EmailFrom = from

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// smtpConfig resolves the SMTP relay. Without an explicit host, Gmail is
// used when GMAIL_USER and GMAIL_APP_PASSWORD are set.
func smtpConfig(f File) (mailer.SMTPParams, string, error) {
	from := pick("", f.EmailFrom, "", "EMAIL_FROM")

	host := pick("", f.SMTP.Host, "", "SMTP_HOST")
	if host == "" {
		user, password := os.Getenv("GMAIL_USER"), os.Getenv("GMAIL_APP_PASSWORD")
		if user == "" || password == "" {
			return mailer.SMTPParams{}, from, nil
		}
		if from == "" {
			from = user
		}

		return mailer.SMTPParams{
			Host:     gmailHost,
			Port:     gmailPort,
			Username: user,
			Password: password,
		}, from, nil
	}

	port, err := strconv.Atoi(pick("", f.SMTP.Port, "587", "SMTP_PORT"))
	if err != nil {
		return mailer.SMTPParams{}, "", errors.Wrap(ErrSMTPPortInvalid, err.Error())
	}

	return mailer.SMTPParams{
		Host:     host,
		Port:     port,
		Username: pick("", f.SMTP.Username, "", "SMTP_USERNAME"),
		Password: pick("", f.SMTP.Password, "", "SMTP_PASSWORD"),
	}, from, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return errors.Wrapf(ErrBaseURLInvalid, "'%s'", c.BaseURL)
	}
	if c.Port == "" {
		return ErrPortInvalid
	}

	if c.DBDriver != database.DriverSQLite && c.DBDriver != database.DriverPostgres {
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}
	if c.DBPath == "" {
		return ErrDBMissingPath
	}

	switch c.BlobBackend {
	case BlobBackendLocal:
	case BlobBackendS3:
		if c.S3.Bucket == "" {
			return ErrS3MissingBucket
		}
	default:
		return errors.Wrapf(ErrBlobBackendInvalid, "'%s'", c.BlobBackend)
	}

	return nil
}
