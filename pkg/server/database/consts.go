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

package database

import (
	"database/sql"
)

const (
	// DriverSQLite is the driver name for an embedded SQLite database
	DriverSQLite = "sqlite"
	// DriverPostgres is the driver name for a PostgreSQL server
	DriverPostgres = "postgres"
)

// NullString is a nullable string column
type NullString struct {
	sql.NullString
}

// ToNullString returns a valid NullString for a non-empty string and a
// null one otherwise
func ToNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}
