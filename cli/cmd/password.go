// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh/terminal"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("empty password")
)

var stdin = bufio.NewReader(os.Stdin)

// readSecret prompts on stderr and reads a line from stdin without echo
// when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !terminal.IsTerminal(fd) {
		return readLine(stdin)
	}
	secret, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// walletPassword returns STEEMCLI_PASSWORD or prompts for the wallet
// password.
func walletPassword() (string, error) {
	if password := viper.GetString("password"); password != "" {
		return password, nil
	}
	return readSecret("Wallet password: ")
}

// newPassword returns STEEMCLI_PASSWORD or prompts for a new password
// twice.
func newPassword(what string) (string, error) {
	if password := viper.GetString("password"); password != "" {
		return password, nil
	}
	password, err := readSecret(fmt.Sprintf("New %v password: ", what))
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errEmptyPassword
	}
	verify, err := readSecret("Verify password: ")
	if err != nil {
		return "", err
	}
	if password != verify {
		return "", errPasswordMismatch
	}
	return password, nil
}

// readLine reads a line without its line ending. A last line without one is
// returned at EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func confirm(question string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%v [y/N] ", question)
	line, err := readLine(stdin)
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
