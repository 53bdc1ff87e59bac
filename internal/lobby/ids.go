package lobby

import (
	"github.com/cockroachdb/errors"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 20
	idAttempts = 8
)

// IDGenerator returns a fresh random token.
type IDGenerator func() (string, error)

// NanoID generates 20 character lowercase base36 ids.
func NanoID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// uniqueID draws ids until taken reports false for one.
func uniqueID(gen IDGenerator, taken func(string) bool) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id, err := gen()
		if err != nil {
			return "", errors.Wrap(err, "generate id")
		}
		if id != "" && !taken(id) {
			return id, nil
		}
	}
	return "", errors.Newf("no unused id after %d attempts", idAttempts)
}

func (e *Engine) newSessionID() (SessionID, error) {
	id, err := uniqueID(e.newID, func(id string) bool { return e.sessions.has(SessionID(id)) })
	return SessionID(id), err
}

func (e *Engine) newRoomID() (RoomID, error) {
	id, err := uniqueID(e.newID, func(id string) bool { return e.rooms.has(RoomID(id)) })
	return RoomID(id), err
}
