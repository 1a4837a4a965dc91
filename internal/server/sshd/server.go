// Package sshd exposes the chat over plain SSH: any stock client can
// connect, authenticate with a password, and get its terminal driven by
// the synchronization loop. No custom client is needed.
package sshd

import (
	"context"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/chat"
	"github.com/dmitrijs2005/shack/internal/server/models"
)

// Authenticator is the slice of the credential service the transport
// depends on.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

type Server struct {
	address     string
	hostKeyPath string
	authDelay   time.Duration
	creds       Authenticator
	hub         *chat.Hub
	logger      logging.Logger
}

func NewServer(address, hostKeyPath string, authDelay time.Duration, creds Authenticator, hub *chat.Hub, l logging.Logger) *Server {
	return &Server{
		address:     address,
		hostKeyPath: hostKeyPath,
		authDelay:   authDelay,
		creds:       creds,
		hub:         hub,
		logger:      l.With("module", "sshd"),
	}
}

func (s *Server) serverConfig(ctx context.Context) (*ssh.ServerConfig, error) {
	signer, err := LoadOrGenerateHostKey(s.hostKeyPath)
	if err != nil {
		return nil, err
	}

	config := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			user, err := s.creds.Authenticate(ctx, meta.User(), string(password))
			if err != nil {
				s.logger.Warn(ctx, "authentication rejected", "user", meta.User(), "error", err)
				// Slow down guessing; a stock client shows the prompt again.
				time.Sleep(s.authDelay)
				return nil, err
			}
			return &ssh.Permissions{
				Extensions: map[string]string{"username": user.Username},
			}, nil
		},
	}
	config.AddHostKey(signer)
	return config, nil
}

func (s *Server) Run(ctx context.Context) error {
	config, err := s.serverConfig(ctx)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping SSH server...")
		listener.Close()
	}()

	s.logger.Info(ctx, "Starting SSH server", "address", s.address)

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error(ctx, "accept failed", "error", err)
			continue
		}
		go s.handleConn(ctx, netConn, config)
	}
}
