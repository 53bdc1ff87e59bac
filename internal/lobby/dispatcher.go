package lobby

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Dispatch decodes one inbound frame from conn and applies it. Malformed
// frames, stale references and commands that do not apply to the session's
// current state change nothing and send nothing back; the returned error says
// which of those happened and is only meant for logging.
func (e *Engine) Dispatch(conn Conn, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.dispatchLocked(conn, payload)
	e.observe()
	e.recordOutcome(err)
	if e.log.GetLevel() <= zerolog.DebugLevel {
		e.logLobby()
	}
	return err
}

func (e *Engine) dispatchLocked(conn Conn, payload []byte) error {
	s, ok := e.sessions.findByConn(conn)
	if !ok {
		return notApplicable("frame from unregistered connection")
	}

	cmd, err := DecodeCommand(payload)
	if err != nil {
		return err
	}
	if SessionID(cmd.ID) != s.id {
		return malformed(nil, "command id %q does not belong to session %s", cmd.ID, s.id)
	}

	switch cmd.Command {
	case CommandReady:
		return e.tryMatchLocked(s.id)

	case CommandDisconnect:
		room, talking := s.Room()
		if !talking {
			if s.Status() == StatusReady {
				s.state = Disconnected{}
				return nil
			}
			return notApplicable("session %s has no active room", s.id)
		}
		return e.destroyRoomLocked(room, s.id, true)

	case CommandMessage:
		if cmd.Message == nil {
			return notApplicable("message command from %s without text", s.id)
		}
		room, talking := s.Room()
		if !talking {
			return notApplicable("session %s is not talking", s.id)
		}
		return e.postMessageLocked(room, s.id, *cmd.Message)

	default:
		// validation only lets the three tags through
		return malformed(nil, "unknown command %q", cmd.Command)
	}
}

func (e *Engine) recordOutcome(err error) {
	switch {
	case err == nil:
	case IsMalformed(err):
		e.metrics.discarded(discardMalformed)
		e.log.Debug().Err(err).Msg("Discarded malformed frame")
	case IsNotApplicable(err):
		e.metrics.discarded(discardNotApplicable)
		e.log.Debug().Err(err).Msg("Command not applicable")
	case errors.HasAssertionFailure(err):
		e.metrics.discarded(discardInternal)
		e.log.Error().Err(err).Msg("Invariant violated while handling frame")
	default:
		e.metrics.discarded(discardInternal)
		e.log.Error().Err(err).Msg("Failed to handle frame")
	}
}

func (e *Engine) logLobby() {
	arr := zerolog.Arr()
	for _, s := range e.snapshotLocked() {
		arr.Dict(zerolog.Dict().Str("id", string(s.ID)).Str("status", s.State))
	}
	e.log.Debug().Array("lobby", arr).Msg("Lobby")
}
