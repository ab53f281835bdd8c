package console

import (
	"github.com/pkg/term"
)

// Command is a single-key control action for the CLI frontend.
type Command byte

const (
	CommandNone Command = iota
	CommandTogglePause
	CommandStep
	CommandReset
	CommandQuit
)

// Keys reads raw single keypresses from the controlling terminal and turns
// them into commands: space pauses/resumes, s steps one frame, r resets,
// q quits.
type Keys struct {
	tty *term.Term
}

func OpenKeys() (*Keys, error) {
	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, err
	}

	return &Keys{tty: tty}, nil
}

// Close restores the terminal mode.
func (k *Keys) Close() error {
	if err := k.tty.Restore(); err != nil {
		return err
	}

	return k.tty.Close()
}

// Next blocks until a key arrives and returns the mapped command.
// Unmapped keys return CommandNone.
func (k *Keys) Next() (Command, error) {
	buff := [1]byte{}
	if _, err := k.tty.Read(buff[:]); err != nil {
		return CommandNone, err
	}

	switch buff[0] {
	case ' ':
		return CommandTogglePause, nil
	case 's':
		return CommandStep, nil
	case 'r':
		return CommandReset, nil
	case 'q', 0x03: // ctrl-c
		return CommandQuit, nil
	}

	return CommandNone, nil
}
