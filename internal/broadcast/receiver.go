package broadcast

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wandip/drivesim/internal/packet"
	"github.com/wandip/drivesim/internal/salsa20"
)

var (
	ErrFailedToReceiveTelemetry  = errors.New("failed to receive telemetry")
	ErrNoDataReceived            = errors.New("no data received")
	ErrFailedToDecipherTelemetry = errors.New("failed to decipher telemetry")
)

// ReceiverConfig locates the publisher. ListenAddr defaults to one port above
// the publisher port on all interfaces.
type ReceiverConfig struct {
	Host       string
	Port       int
	ListenAddr string
}

// Receiver subscribes to a Publisher by sending periodic heartbeats and
// decodes the packets it receives.
type Receiver struct {
	conn       *net.UDPConn
	address    string
	sendPort   int
	ivSeed     uint32
	closeFunc  func() error
	stopTicker chan struct{}
	closeOnce  sync.Once
	log        zerolog.Logger
}

func NewReceiver(cfg ReceiverConfig, log zerolog.Logger) (*Receiver, error) {
	log.Debug().Msg("creating broadcast receiver")

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%d", cfg.Port+1)
	}

	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("setup UDP listener %s: %w", listenAddr, err)
	}

	receiver := Receiver{
		conn:       conn,
		address:    cfg.Host,
		sendPort:   cfg.Port,
		ivSeed:     salsa20.DefaultIVSeed,
		closeFunc:  conn.Close,
		stopTicker: make(chan struct{}),
		log:        log,
	}

	ticker := time.NewTicker(HeartbeatInterval)

	go func() {
		defer ticker.Stop()

		err := receiver.sendHeartbeat()
		if err != nil {
			receiver.log.Error().Err(err).Msg("send initial heartbeat")
		}

		for {
			select {
			case <-receiver.stopTicker:
				receiver.log.Debug().Msg("heartbeat goroutine stopping")

				return
			case <-ticker.C:
				err := receiver.sendHeartbeat()
				if err != nil {
					receiver.log.Error().Err(err).Msg("send heartbeat")
				}
			}
		}
	}()

	return &receiver, nil
}

// Read blocks until the next packet arrives or the heartbeat deadline passes.
func (r *Receiver) Read() (packet.Packet, error) {
	buffer := make([]byte, 4096)

	bufLen, _, err := r.conn.ReadFromUDP(buffer)
	if err != nil {
		return packet.Packet{}, fmt.Errorf("%w: %s", ErrFailedToReceiveTelemetry, err.Error())
	}

	if bufLen == 0 {
		return packet.Packet{}, ErrNoDataReceived
	}

	deciphered, err := salsa20.Decode(r.ivSeed, buffer[:bufLen])
	if err != nil {
		return packet.Packet{}, fmt.Errorf("%w: %s", ErrFailedToDecipherTelemetry, err.Error())
	}

	return packet.Decode(deciphered)
}

func (r *Receiver) Close() error {
	var closeErr error

	r.closeOnce.Do(func() {
		r.log.Debug().Msg("closing broadcast receiver")

		close(r.stopTicker)

		_ = r.conn.SetReadDeadline(time.Now())

		closeErr = r.closeFunc()
	})

	return closeErr
}

func (r *Receiver) sendHeartbeat() error {
	r.log.Debug().Msgf("sending heartbeat to %s:%d", r.address, r.sendPort)

	_, err := r.conn.WriteToUDP([]byte(heartbeat), &net.UDPAddr{
		IP:   net.ParseIP(r.address),
		Port: r.sendPort,
	})
	if err != nil {
		return fmt.Errorf("send UDP heartbeat: %w", err)
	}

	err = r.conn.SetReadDeadline(time.Now().Add(HeartbeatInterval))
	if err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}

	return nil
}
