package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

type SshListener struct {
	addr    string
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(addr string, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		addr:    addr,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "addr", listener.Addr().String())
	return l.Serve(ctx, listener)
}

// Serve runs the ssh accept loop on an existing listener.
func (l *SshListener) Serve(ctx context.Context, listener net.Listener) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr(), "user", sshConn.User())

	// Closing the connection on cancel unblocks the channel loop below.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		// Clients won't forward input until they get a reply to their shell request.
		shellReady := make(chan struct{})
		go func(in <-chan *ssh.Request) {
			for req := range in {
				switch req.Type {
				case "pty-req":
					// Rejecting the PTY keeps local echo and line buffering on the client.
					req.Reply(false, nil)
				case "shell":
					req.Reply(true, nil)
					close(shellReady)
				default:
					req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-shellReady:
		case <-ctx.Done():
			ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFConn(&sshChannelConn{Channel: ch, remote: conn.RemoteAddr()}))
	}
}

// sshChannelConn carries the remote address of the underlying connection
// along with the channel.
type sshChannelConn struct {
	ssh.Channel
	remote net.Addr
}

func (c *sshChannelConn) RemoteAddr() net.Addr {
	return c.remote
}
