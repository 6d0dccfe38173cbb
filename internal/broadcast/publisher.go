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

const (
	HeartbeatInterval = 10 * time.Second
	SubscriberTimeout = 3 * HeartbeatInterval
	DefaultPort       = 33740

	heartbeat = "drivesim"
)

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends enciphered frame packets to every receiver that has sent a
// heartbeat within SubscriberTimeout.
type Publisher struct {
	conn        *net.UDPConn
	ivSeed      uint32
	iv          uint32
	mu          sync.Mutex
	subscribers map[string]subscriber
	closed      chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
	log         zerolog.Logger
}

type subscriber struct {
	addr     *net.UDPAddr
	lastSeen time.Time
}

// NewPublisher listens for heartbeats on addr, for example ":33740".
func NewPublisher(addr string, log zerolog.Logger) (*Publisher, error) {
	log.Debug().Str("address", addr).Msg("creating broadcast publisher")

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("setup UDP listener %s: %w", addr, err)
	}

	publisher := &Publisher{
		conn:        conn,
		ivSeed:      salsa20.DefaultIVSeed,
		subscribers: map[string]subscriber{},
		closed:      make(chan struct{}),
		log:         log,
	}

	publisher.wg.Add(1)

	go publisher.listen()

	return publisher, nil
}

// Port is the local port heartbeats are received on
func (p *Publisher) Port() int {
	return p.conn.LocalAddr().(*net.UDPAddr).Port
}

func (p *Publisher) listen() {
	defer p.wg.Done()

	buffer := make([]byte, 64)

	for {
		n, addr, err := p.conn.ReadFromUDP(buffer)
		if err != nil {
			select {
			case <-p.closed:
				p.log.Debug().Msg("heartbeat listener stopping")

				return
			default:
			}

			p.log.Debug().Err(err).Msg("receive heartbeat")

			continue
		}

		if string(buffer[:n]) != heartbeat {
			p.log.Debug().Str("from", addr.String()).Msg("ignoring unknown datagram")

			continue
		}

		p.mu.Lock()
		if _, ok := p.subscribers[addr.String()]; !ok {
			p.log.Info().Str("subscriber", addr.String()).Msg("telemetry subscriber connected")
		}

		p.subscribers[addr.String()] = subscriber{addr: addr, lastSeen: time.Now()}
		p.mu.Unlock()
	}
}

// Subscribers returns the number of live subscribers
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pruneLocked(time.Now())

	return len(p.subscribers)
}

func (p *Publisher) pruneLocked(now time.Time) {
	for key, sub := range p.subscribers {
		if now.Sub(sub.lastSeen) > SubscriberTimeout {
			p.log.Info().Str("subscriber", key).Msg("telemetry subscriber timed out")
			delete(p.subscribers, key)
		}
	}
}

// Publish enciphers the packet and sends it to every live subscriber.
func (p *Publisher) Publish(pkt packet.Packet) error {
	select {
	case <-p.closed:
		return ErrPublisherClosed
	default:
	}

	p.mu.Lock()
	p.pruneLocked(time.Now())

	targets := make([]*net.UDPAddr, 0, len(p.subscribers))
	for _, sub := range p.subscribers {
		targets = append(targets, sub.addr)
	}

	p.iv++
	iv := p.iv
	p.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	encoded, err := salsa20.Encode(p.ivSeed, iv, pkt.Encode())
	if err != nil {
		return fmt.Errorf("encipher packet: %w", err)
	}

	var errs []error

	for _, addr := range targets {
		_, err := p.conn.WriteToUDP(encoded, addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("send packet to %s: %w", addr, err))
		}
	}

	return errors.Join(errs...)
}

func (p *Publisher) Close() error {
	var closeErr error

	p.closeOnce.Do(func() {
		p.log.Debug().Msg("closing broadcast publisher")

		close(p.closed)

		_ = p.conn.SetReadDeadline(time.Now())

		closeErr = p.conn.Close()

		p.wg.Wait()
	})

	return closeErr
}
