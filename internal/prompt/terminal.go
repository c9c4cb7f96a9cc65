package prompt

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

var ErrPasswordsDiffer = errors.New("passwords do not match")

// Terminal asks for the super user's profile on an interactive console.
type Terminal struct {
	reader *bufio.Reader
	w      io.Writer
	fd     int
}

// NewTerminal reads answers from r and writes prompts to w. fd is the
// descriptor password input is read from when it is a terminal.
func NewTerminal(r io.Reader, w io.Writer, fd int) *Terminal {
	return &Terminal{reader: bufio.NewReader(r), w: w, fd: fd}
}

// PromptNewUser asks for the profile and a confirmed password. End of input
// cancels with common.ErrCanceled.
func (t *Terminal) PromptNewUser(ctx context.Context) (models.NewUser, error) {
	var user models.NewUser

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Super user name", &user.Username},
		{"Email", &user.Email},
		{"First name", &user.Firstname},
		{"Last name", &user.Lastname},
	}
	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return models.NewUser{}, common.ErrCanceled
		}
		v, err := GetSimpleText(t.reader, f.prompt, t.w)
		if err != nil {
			return models.NewUser{}, err
		}
		*f.dst = v
	}

	pw, err := GetPassword(t.reader, t.fd, "Password", t.w)
	if err != nil {
		return models.NewUser{}, err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(t.reader, t.fd, "Repeat password", t.w)
	if err != nil {
		return models.NewUser{}, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return models.NewUser{}, ErrPasswordsDiffer
	}
	user.Password = string(pw)
	return user, nil
}
