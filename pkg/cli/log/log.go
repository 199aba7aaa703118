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

// Package log prints the messages of the researchos client. Progress goes to
// stdout; warnings, errors and debug output go to stderr so that command
// output stays clean when it is piped.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// debugEnvName turns on debug output when set to "1"
const debugEnvName = "RESEARCHOS_DEBUG"

var (
	// ColorRed is a red foreground color
	ColorRed = color.New(color.FgRed)
	// ColorGreen is a green foreground color
	ColorGreen = color.New(color.FgGreen)
	// ColorYellow is a yellow foreground color
	ColorYellow = color.New(color.FgYellow)
	// ColorBlue is a blue foreground color
	ColorBlue = color.New(color.FgBlue)
	// ColorGray is a gray foreground color
	ColorGray = color.New(color.FgHiBlack)
)

const indent = "  "

var (
	mu     sync.Mutex
	out    io.Writer = color.Output
	errOut io.Writer = color.Error
)

// SetOutput replaces the writers for regular and error messages. It returns
// a function restoring the previous ones.
func SetOutput(stdout, stderr io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := out, errOut
	out, errOut = stdout, stderr

	return func() {
		mu.Lock()
		defer mu.Unlock()

		out, errOut = prevOut, prevErr
	}
}

func write(toErr bool, symbol, msg string) {
	mu.Lock()
	defer mu.Unlock()

	w := out
	if toErr {
		w = errOut
	}

	if symbol == "" {
		fmt.Fprintf(w, "%s%s", indent, msg)
		return
	}
	fmt.Fprintf(w, "%s%s %s", indent, symbol, msg)
}

// Info prints information
func Info(msg string) {
	write(false, ColorBlue.Sprint("•"), msg)
}

// Infof prints information with optional format verbs
func Infof(msg string, v ...interface{}) {
	Info(fmt.Sprintf(msg, v...))
}

// Success prints a success message
func Success(msg string) {
	write(false, ColorGreen.Sprint("✔"), msg)
}

// Successf prints a success message with optional format verbs
func Successf(msg string, v ...interface{}) {
	Success(fmt.Sprintf(msg, v...))
}

// Plain prints a message without a symbol
func Plain(msg string) {
	write(false, "", msg)
}

// Plainf is Plain with format verbs
func Plainf(msg string, v ...interface{}) {
	Plain(fmt.Sprintf(msg, v...))
}

// Warnf prints a warning to stderr
func Warnf(msg string, v ...interface{}) {
	write(true, ColorYellow.Sprint("!"), fmt.Sprintf(msg, v...))
}

// Error prints an error message to stderr
func Error(msg string) {
	write(true, ColorRed.Sprint("⨯"), msg)
}

// Errorf prints an error message to stderr with optional format verbs
func Errorf(msg string, v ...interface{}) {
	Error(fmt.Sprintf(msg, v...))
}

// Askf prints a question. A masked input gets a gray symbol.
func Askf(msg string, masked bool, v ...interface{}) {
	symbol := ColorGreen.Sprint("[?]")
	if masked {
		symbol = ColorGray.Sprint("[?]")
	}

	write(false, symbol, fmt.Sprintf(msg, v...)+": ")
}

// IsDebug reports whether debug output is on
func IsDebug() bool {
	return os.Getenv(debugEnvName) == "1"
}

// Debug prints to stderr if RESEARCHOS_DEBUG is set
func Debug(msg string, v ...interface{}) {
	if !IsDebug() {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	fmt.Fprintf(errOut, "%s %s", ColorGray.Sprint("DEBUG:"), fmt.Sprintf(msg, v...))
}
