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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/prompt"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/log"
	"golang.org/x/term"
)

const userUsage = `Available commands:
  create: Create a verified user
  remove: Remove a user (only if they own no projects)
  reset-password: Reset a user's password
  verify: Mark a user's email as verified`

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

// readPassword returns the flag value or reads a password from the terminal
// without echoing it
func readPassword(value string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Print("Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}

	return string(b), nil
}

// findUser looks up the user by email and exits when it fails
func findUser(a *app.App, email string) database.User {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user with email %s not found\n", email)
		} else {
			log.ErrorWrap(err, "finding user")
		}
		os.Exit(1)
	}

	return user
}

func userCreateCmd(args []string) {
	fs := setupFlagSet("create", "researchos-server user create")

	email := fs.String("email", "", "User email address (required)")
	name := fs.String("name", "", "User full name")
	password := fs.String("password", "", "User password (prompted when omitted)")
	db := addDBFlags(fs)

	fs.Parse(args)

	requireString(fs, *email, "email")

	pw, err := readPassword(*password)
	if err != nil {
		log.ErrorWrap(err, "getting password")
		os.Exit(1)
	}

	a, cleanup := setupAppWithDB(fs, db)
	defer cleanup()

	if _, err := a.CreateUser(*name, *email, pw); err != nil {
		if msg, ok := app.PublicMessage(err); ok {
			fmt.Printf("Error: %s\n", msg)
		} else {
			log.ErrorWrap(err, "creating user")
		}
		os.Exit(1)
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("Email: %s\n", app.NormalizeEmail(*email))
}

func userRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "researchos-server user remove")

	email := fs.String("email", "", "User email address (required)")
	db := addDBFlags(fs)

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, db)
	defer cleanup()

	findUser(a, *email)

	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s?", *email), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		return
	}

	if err := a.RemoveUser(*email); err != nil {
		if errors.Is(err, app.ErrUserHasExistingResources) {
			fmt.Printf("Error: %s\n", err)
		} else {
			log.ErrorWrap(err, "removing user")
		}
		os.Exit(1)
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Email: %s\n", *email)
}

func userResetPasswordCmd(args []string) {
	fs := setupFlagSet("reset-password", "researchos-server user reset-password")

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "New password (prompted when omitted)")
	db := addDBFlags(fs)

	fs.Parse(args)

	requireString(fs, *email, "email")

	pw, err := readPassword(*password)
	if err != nil {
		log.ErrorWrap(err, "getting password")
		os.Exit(1)
	}

	a, cleanup := setupAppWithDB(fs, db)
	defer cleanup()

	user := findUser(a, *email)
	if err := app.UpdateUserPassword(a.DB, user, pw); err != nil {
		if msg, ok := app.PublicMessage(err); ok {
			fmt.Printf("Error: %s\n", msg)
		} else {
			log.ErrorWrap(err, "updating password")
		}
		os.Exit(1)
	}

	fmt.Printf("Password reset successfully\n")
	fmt.Printf("Email: %s\n", *email)
}

func userVerifyCmd(args []string) {
	fs := setupFlagSet("verify", "researchos-server user verify")

	email := fs.String("email", "", "User email address (required)")
	db := addDBFlags(fs)

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, db)
	defer cleanup()

	user := findUser(a, *email)
	if user.EmailVerified {
		fmt.Printf("Email %s is already verified\n", user.Email)
		return
	}

	if err := a.MarkVerified(user); err != nil {
		log.ErrorWrap(err, "verifying user")
		os.Exit(1)
	}

	fmt.Printf("Email verified\n")
	fmt.Printf("Email: %s\n", user.Email)
}

func userCmd(args []string) {
	if len(args) < 1 {
		fmt.Printf("Usage:\n  researchos-server user [command]\n\n%s\n", userUsage)
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "create":
		userCreateCmd(subArgs)
	case "remove":
		userRemoveCmd(subArgs, os.Stdin)
	case "reset-password":
		userResetPasswordCmd(subArgs)
	case "verify":
		userVerifyCmd(subArgs)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n%s\n", subcommand, userUsage)
		os.Exit(1)
	}
}
