package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"

	"github.com/pixil98/go-arena/internal/listener"
)

type ListenerType int

const (
	ListenerTypeTcp ListenerType = iota
	ListenerTypeTelnet
	ListenerTypeSSH
	ListenerTypeWebsocket
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tcp", "":
		*lt = ListenerTypeTcp
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	case "websocket":
		*lt = ListenerTypeWebsocket
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Host        string       `json:"host,omitempty"`
	Port        uint16       `json:"port"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
	Path        string       `json:"path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.HostKeyPath != "" && cl.Protocol != ListenerTypeSSH {
		el.Add(fmt.Errorf("host_key_path only applies to ssh listeners"))
	}
	if cl.Path != "" && cl.Protocol != ListenerTypeWebsocket {
		el.Add(fmt.Errorf("path only applies to websocket listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) addr() string {
	return net.JoinHostPort(cl.Host, strconv.Itoa(int(cl.Port)))
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTcp:
		return listener.NewTcpListener(cl.addr(), cm), nil
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.addr(), cm), nil
	case ListenerTypeSSH:
		hostKey, err := cl.loadOrGenerateHostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.addr(), cm, hostKey), nil
	case ListenerTypeWebsocket:
		return listener.NewWebsocketListener(cl.addr(), cl.Path, cm), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}

func (cl *ListenerConfig) loadOrGenerateHostKey() (ssh.Signer, error) {
	if cl.HostKeyPath != "" {
		keyBytes, err := os.ReadFile(cl.HostKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
		}
		return signer, nil
	}

	slog.Warn("no host_key_path configured for ssh listener, generating ephemeral key")
	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer from ephemeral key: %w", err)
	}
	return signer, nil
}
