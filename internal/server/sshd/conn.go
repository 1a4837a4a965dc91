package sshd

import (
	"context"
	"net"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/dmitrijs2005/shack/internal/server/chat"
	"github.com/dmitrijs2005/shack/internal/server/chat/keys"
	"github.com/dmitrijs2005/shack/internal/server/models"
)

// RFC 4254 section 6.2.
type ptyRequest struct {
	Term   string
	Cols   uint32
	Rows   uint32
	Width  uint32
	Height uint32
	Modes  string
}

// RFC 4254 section 6.7.
type windowChangeRequest struct {
	Cols   uint32
	Rows   uint32
	Width  uint32
	Height uint32
}

func (s *Server) handleConn(ctx context.Context, netConn net.Conn, config *ssh.ServerConfig) {
	connID := uuid.NewString()

	sconn, chans, reqs, err := ssh.NewServerConn(netConn, config)
	if err != nil {
		s.logger.Warn(ctx, "handshake failed", "conn_id", connID, "error", err)
		netConn.Close()
		return
	}
	defer sconn.Close()

	stop := context.AfterFunc(ctx, func() { sconn.Close() })
	defer stop()

	go ssh.DiscardRequests(reqs)

	username := sconn.Permissions.Extensions["username"]
	s.logger.Info(ctx, "connection established", "conn_id", connID, "user", username)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			s.logger.Error(ctx, "channel accept failed", "conn_id", connID, "error", err)
			continue
		}

		session := s.hub.Join(ctx, models.Authenticated(username), channel)
		go s.handleRequests(ctx, requests, session)
		go s.readLoop(ctx, channel, session)
	}
}

// handleRequests serves terminal geometry to the session. Interactive
// clients send pty-req before shell and window-change on every resize;
// the session stays blank until the first geometry arrives.
func (s *Server) handleRequests(ctx context.Context, in <-chan *ssh.Request, session *chat.Session) {
	for req := range in {
		switch req.Type {
		case "pty-req":
			var pty ptyRequest
			if err := ssh.Unmarshal(req.Payload, &pty); err != nil {
				s.logger.Warn(ctx, "bad pty-req payload", "error", err)
				req.Reply(false, nil)
				continue
			}
			session.Resize(int(pty.Cols), int(pty.Rows))
			req.Reply(true, nil)
		case "window-change":
			var wc windowChangeRequest
			if err := ssh.Unmarshal(req.Payload, &wc); err != nil {
				s.logger.Warn(ctx, "bad window-change payload", "error", err)
				continue
			}
			session.Resize(int(wc.Cols), int(wc.Rows))
		case "shell":
			req.Reply(len(req.Payload) == 0, nil)
		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// readLoop decodes the raw byte stream from the client into keys and
// feeds them to the hub until the session ends or the channel breaks.
func (s *Server) readLoop(ctx context.Context, channel ssh.Channel, session *chat.Session) {
	decoder := &keys.Decoder{}
	buf := make([]byte, 512)

	for {
		n, err := channel.Read(buf)
		if err != nil {
			session.Disconnect()
			return
		}
		for _, k := range decoder.Feed(buf[:n]) {
			if s.hub.HandleKey(ctx, session, k) {
				decoder.Reset()
			}
		}
		if !session.Active() {
			return
		}
	}
}
