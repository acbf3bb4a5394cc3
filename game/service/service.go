package service

import (
	"errors"
	"log/slog"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/match"
	"github.com/nkapoor/dots-and-boxes/game/session"
	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

// Service wires the credential store, session registry, matchmaking
// queue, and match registry behind the wire protocol. It owns no state
// of its own; each registry serializes its own mutations.
type Service struct {
	users    *user.Store
	sessions *session.Registry
	matches  *match.Registry
	queue    *match.Queue
	log      *slog.Logger
}

// New assembles the service and wires the session-expiry hook so that a
// user's matches learn about their presence changes.
func New(users *user.Store, sessions *session.Registry, matches *match.Registry, queue *match.Queue, logger *slog.Logger) *Service {
	sessions.OnExpired(matches.NotifyStatus)
	return &Service{
		users:    users,
		sessions: sessions,
		matches:  matches,
		queue:    queue,
		log:      logger,
	}
}

// Dispatch handles one decoded inbound message from conn. Domain errors
// are answered on the requesting connection only; successful operations
// notify every affected connection themselves.
func (s *Service) Dispatch(conn protocol.Conn, msg protocol.Inbound) {
	var err error
	switch m := msg.(type) {
	case protocol.SignUp:
		err = s.signUp(conn, m.Username, m.Password)
	case protocol.Login:
		err = s.login(conn, m.Username, m.Password)
	case protocol.Logout:
		err = s.logout(conn, m.SessionID)
	case protocol.Status:
		err = s.status(conn, m.SessionID)
	case protocol.JoinGame:
		err = s.joinGame(conn, m.SessionID)
	case protocol.GetGame:
		err = s.getGame(conn, m.SessionID, m.GameID)
	case protocol.MakeMove:
		err = s.makeMove(conn, m.SessionID, m.GameID, m.Move)
	case protocol.ResetGame:
		err = s.resetGame(conn, m.SessionID, m.GameID)
	case protocol.ExitGame:
		err = s.exitGame(conn, m.SessionID, m.GameID)
	}
	if err != nil {
		s.sendError(conn, err)
	}
}

// Disconnect releases everything bound to a closing connection: its
// matchmaking entry and its session binding. The session itself stays
// live and adoptable; the user's matches get a status refresh.
func (s *Service) Disconnect(conn protocol.Conn) {
	s.queue.Remove(conn)
	if sess := s.sessions.Disconnect(conn); sess != nil {
		s.matches.NotifyStatus(sess.User)
	}
}

func (s *Service) signUp(conn protocol.Conn, username, password string) error {
	if s.sessions.ActiveSession(conn) != nil {
		return &AuthError{Reason: ReasonActiveConnection}
	}

	u, err := s.users.Create(username, password)
	if err != nil {
		s.log.Info("sign up rejected", "username", username, "err", err)
		return &AuthError{Reason: ReasonSignUpFailed}
	}

	sess := s.sessions.Create(u, conn)
	conn.Send(protocol.NewAuthenticated(sess.ID, u.ID))
	return nil
}

func (s *Service) login(conn protocol.Conn, username, password string) error {
	if s.sessions.ActiveSession(conn) != nil {
		return &AuthError{Reason: ReasonActiveConnection}
	}

	u, ok := s.users.Authenticate(username, password)
	if !ok {
		s.log.Info("login rejected", "username", username)
		return &AuthError{Reason: ReasonLoginFailed}
	}

	sess := s.sessions.Create(u, conn)
	conn.Send(protocol.NewAuthenticated(sess.ID, u.ID))
	return nil
}

// logout resolves the session (adopting an abandoned one, so the expiry
// notification reaches the requester) and expires it.
func (s *Service) logout(conn protocol.Conn, sessionID string) error {
	sess, _, err := s.resolve(sessionID, conn)
	if err != nil {
		return err
	}
	s.sessions.Expire(sess.ID)
	return nil
}

func (s *Service) status(conn protocol.Conn, sessionID string) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	conn.Send(protocol.NewAuthenticated(sess.ID, sess.User.ID))
	return nil
}

func (s *Service) joinGame(conn protocol.Conn, sessionID string) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	if err := s.queue.Join(sess.ID, conn); err != nil {
		if errors.Is(err, match.ErrAlreadyQueued) {
			return &PermissionError{Reason: ReasonMultipleRequests}
		}
		return err
	}
	return nil
}

func (s *Service) getGame(conn protocol.Conn, sessionID, gameID string) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	game, err := s.matches.Game(gameID, sess.User)
	if err != nil {
		return s.matchError(gameID, err)
	}
	conn.Send(game)
	return nil
}

func (s *Service) makeMove(conn protocol.Conn, sessionID, gameID string, move engine.Edge) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	if err := s.matches.MakeMove(gameID, sess.User, move); err != nil {
		return s.matchError(gameID, err)
	}
	return nil
}

func (s *Service) resetGame(conn protocol.Conn, sessionID, gameID string) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	if err := s.matches.Reset(gameID, sess.User); err != nil {
		return s.matchError(gameID, err)
	}
	return nil
}

func (s *Service) exitGame(conn protocol.Conn, sessionID, gameID string) error {
	sess, err := s.resolveNotify(sessionID, conn)
	if err != nil {
		return err
	}
	if err := s.matches.Exit(gameID, sess.User); err != nil {
		return s.matchError(gameID, err)
	}
	return nil
}

// resolve applies the connection-ownership rule to a session-scoped
// message. The adopted return is true when this call rebound an
// abandoned session to conn.
func (s *Service) resolve(sessionID string, conn protocol.Conn) (*session.Session, bool, error) {
	sess, adopted, err := s.sessions.Resolve(sessionID, conn)
	switch {
	case errors.Is(err, session.ErrHijack):
		return nil, false, &AuthError{Reason: ReasonConnectionHijack}
	case errors.Is(err, session.ErrSessionNotFound):
		return nil, false, &SessionExpiredError{SessionID: sessionID}
	case err != nil:
		return nil, false, err
	}
	return sess, adopted, nil
}

// resolveNotify is resolve plus the presence refresh adoption implies.
func (s *Service) resolveNotify(sessionID string, conn protocol.Conn) (*session.Session, error) {
	sess, adopted, err := s.resolve(sessionID, conn)
	if err != nil {
		return nil, err
	}
	if adopted {
		s.matches.NotifyStatus(sess.User)
	}
	return sess, nil
}

// matchError maps match registry and engine failures onto the wire
// taxonomy: a missing match is expiry, everything else is an
// authorization failure carrying the engine's own wording.
func (s *Service) matchError(gameID string, err error) error {
	if errors.Is(err, match.ErrMatchNotFound) {
		return &MatchExpiredError{GameID: gameID}
	}
	if errors.Is(err, match.ErrNotParticipant) {
		return &PermissionError{Reason: ReasonNotParticipant}
	}
	return &PermissionError{Reason: err.Error()}
}

// sendError answers a domain error on the requesting connection.
func (s *Service) sendError(conn protocol.Conn, err error) {
	var (
		authErr    *AuthError
		permErr    *PermissionError
		sessionErr *SessionExpiredError
		matchErr   *MatchExpiredError
	)
	switch {
	case errors.As(err, &authErr):
		conn.Send(protocol.NewUnauthenticated(authErr.Reason))
	case errors.As(err, &permErr):
		conn.Send(protocol.NewUnauthorized(permErr.Reason))
	case errors.As(err, &sessionErr):
		conn.Send(protocol.NewSessionExpired(sessionErr.SessionID))
	case errors.As(err, &matchErr):
		conn.Send(protocol.NewGameExpired(matchErr.GameID))
	default:
		s.log.Error("unclassified dispatch error", "err", err)
		conn.Send(protocol.NewUnauthorized(err.Error()))
	}
}

// Sessions exposes the session registry snapshot for inspection
// surfaces.
func (s *Service) Sessions() []session.Info { return s.sessions.Sessions() }

// Games exposes the match registry snapshot for inspection surfaces.
func (s *Service) Games() []match.Info { return s.matches.Games() }

// GameInfo returns one match's snapshot and engine state.
func (s *Service) GameInfo(id string) (match.Info, *engine.State, error) {
	return s.matches.GameInfo(id)
}

// UserCount reports the number of registered users.
func (s *Service) UserCount() int { return s.users.Count() }
