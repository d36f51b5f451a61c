package irc // import "code.dopame.me/veonik/squawk/irc"

import (
	"crypto/tls"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	irc "github.com/thoj/go-ircevent"

	"code.dopame.me/veonik/squawk/event"
)

type Config struct {
	Nick     string `toml:"nick"`
	Username string `toml:"user"`

	Network     string `toml:"network"`
	TLS         bool   `toml:"tls"`
	AutoConnect bool   `toml:"auto"`

	SASL         bool   `toml:"sasl"`
	SASLUsername string `toml:"sasl_username"`
	SASLPassword string `toml:"sasl_password"`

	ServerPassword string `toml:"server_password"`

	QuitMessage string `toml:"quit_message"`
}

// Manager owns the lifecycle of at most one Connection at a time.
//
// Connection state changes are broadcast on the event dispatcher:
// irc.CONNECTING before dialing, irc.CONNECT once the connection is
// established, irc.DISCONNECT after it ends, and irc.<CODE> for every
// protocol message received.
type Manager struct {
	config *Config
	events *event.Dispatcher
	conn   *Connection

	mu sync.RWMutex
}

type Connection struct {
	*irc.Connection

	current  Config
	quitting chan struct{}
	done     chan struct{}
}

func (conn *Connection) Connect() error {
	conn.Connection.Lock()
	defer conn.Connection.Unlock()
	return conn.Connection.Connect(conn.current.Network)
}

func (conn *Connection) Quit() error {
	select {
	case <-conn.done:
		// already done, nothing to do

	case <-conn.quitting:
		// already quitting, nothing to do

	default:
		logrus.Infoln("irc: quitting")
		conn.Connection.Quit()
		close(conn.quitting)
	}
	// block until done
	select {
	case <-conn.done:
		break

	case <-time.After(1 * time.Second):
		conn.Connection.Disconnect()
		return errors.Errorf("timed out waiting for quit")
	}
	return nil
}

func (conn *Connection) markDone() {
	select {
	case <-conn.done:
		// already done
	default:
		close(conn.done)
	}
}

// controlLoop watches the underlying connection for errors and tears
// the connection down when one occurs.
func (conn *Connection) controlLoop() {
	defer conn.markDone()
	for err := range conn.ErrorChan() {
		select {
		case <-conn.quitting:
			// errors during quit are expected, the server closes on us
			return
		default:
		}
		logrus.Warnln("irc: connection error:", err)
		conn.Disconnect()
		return
	}
}

func NewManager(c *Config, ev *event.Dispatcher) *Manager {
	m := &Manager{config: c, events: ev}
	if c.AutoConnect {
		go func() {
			logrus.Infoln("irc: automatically connecting...")
			<-time.After(250 * time.Millisecond)
			if err := m.Connect(); err != nil {
				logrus.Errorln("irc: failed to autoconnect:", err)
			}
		}()
	}
	return m
}

// Do runs the given function with exclusive access to the active
// Connection.
func (m *Manager) Do(fn func(*Connection) error) error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn == nil {
		return errors.New("not connected")
	}
	conn.Lock()
	defer conn.Unlock()
	return fn(conn)
}

func (m *Manager) Connection() (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return nil, errors.New("not connected")
	}
	return m.conn, nil
}

func newConnection(c Config) *Connection {
	conn := &Connection{
		current:  c,
		quitting: make(chan struct{}),
		done:     make(chan struct{}),
	}
	conn.Connection = irc.IRC(c.Nick, c.Username)
	conn.Log = log.New(logrus.StandardLogger().WriterLevel(logrus.InfoLevel), "", 0)
	if c.TLS {
		conn.UseTLS = true
		conn.TLSConfig = &tls.Config{}
	}
	if c.SASL {
		conn.UseSASL = true
		conn.SASLLogin = c.SASLUsername
		conn.SASLPassword = c.SASLPassword
	}
	conn.Password = c.ServerPassword
	conn.QuitMessage = c.QuitMessage
	if conn.QuitMessage == "" {
		conn.QuitMessage = "farewell"
	}
	return conn
}

func (m *Manager) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return errors.New("already connected")
	}
	m.conn = newConnection(*m.config)
	m.conn.AddCallback("*", func(ev *irc.Event) {
		var target string
		if len(ev.Arguments) > 0 {
			target = ev.Arguments[0]
		}
		m.events.Emit("irc."+ev.Code, map[string]interface{}{
			"User":    ev.User,
			"Host":    ev.Host,
			"Source":  ev.Source,
			"Code":    ev.Code,
			"Message": ev.Message(),
			"Nick":    ev.Nick,
			"Target":  target,
			"Raw":     ev.Raw,
			"Args":    append([]string{}, ev.Arguments...),
		})
	})
	m.events.Emit("irc.CONNECTING", map[string]interface{}{
		"Network": m.conn.current.Network,
	})
	err := m.conn.Connect()
	if err == nil {
		go m.conn.controlLoop()
		go func() {
			m.events.Emit("irc.CONNECT", nil)
			<-m.conn.done
			m.events.Emit("irc.DISCONNECT", nil)
			m.mu.Lock()
			defer m.mu.Unlock()
			m.conn = nil
		}()
	} else {
		m.conn = nil
	}
	return err
}

func (m *Manager) Disconnect() error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn == nil {
		return errors.New("not connected")
	}
	return conn.Quit()
}
