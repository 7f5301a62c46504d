package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped out in tests; there is no terminal under go test.
var readPassword = term.ReadPassword

var errEmptyUserName = errors.New("user name must not be empty")

// promptLine writes prompt to w and returns the next input line with
// surrounding whitespace removed. A last line without a newline still counts.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprintf(w, "%s\n> ", prompt)

	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from the controlling terminal with echo
// off. Callers wipe the result with common.WipeByteArray.
func promptPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return pw, err
}

// credentials asks for the user name and password used by register, login
// and delete-user.
func (a *App) credentials() (string, []byte, error) {
	userName, err := promptLine(a.reader, a.out, "Enter user name")
	if err != nil {
		return "", nil, err
	}
	if userName == "" {
		return "", nil, errEmptyUserName
	}

	password, err := promptPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}
