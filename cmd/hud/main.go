package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/wandip/drivesim/internal/broadcast"
	"github.com/wandip/drivesim/internal/camera"
	"github.com/wandip/drivesim/internal/packet"
	"github.com/wandip/drivesim/internal/units"
)

func main() {
	var (
		host    string
		port    int
		noColor bool
	)

	flag.StringVar(&host, "host", "127.0.0.1", "Simulator host")
	flag.IntVar(&port, "port", broadcast.DefaultPort, "Simulator broadcast port")
	flag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flag.Parse()

	color.NoColor = noColor

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	receiver, err := broadcast.NewReceiver(broadcast.ReceiverConfig{Host: host, Port: port}, logger)
	if err != nil {
		log.Fatalf("Error creating receiver: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		select {
		case <-sigChan:
		case <-done:
		}

		if err := receiver.Close(); err != nil {
			log.Printf("Error closing receiver: %v", err)
		}
	}()

	fmt.Printf("Subscribed to %s:%d\n", host, port)

	label := color.New(color.FgCyan)
	value := color.New(color.FgWhite, color.Bold)
	waiting := color.New(color.FgYellow)

	for {
		pkt, err := receiver.Read()
		if err != nil {
			if errors.Is(err, broadcast.ErrFailedToReceiveTelemetry) {
				break
			}

			log.Printf("Dropped packet: %v", err)

			continue
		}

		if !pkt.Ready {
			fmt.Printf("\r%s frame %-6d camera %-10s", waiting.Sprint("waiting for physics"), pkt.Frame, cameraMode(pkt))

			continue
		}

		fmt.Printf("\r%s %s  %s %s  %s %s  %s %s   ",
			label.Sprint("frame"), value.Sprintf("%-6d", pkt.Frame),
			label.Sprint("speed"), value.Sprintf("%6.1f km/h", pkt.Speed.Map(units.MetersPerSecondToKilometersPerHour).Float()),
			label.Sprint("throttle"), value.Sprintf("%+.0f", pkt.Input.Forward.Float()),
			label.Sprint("camera"), value.Sprint(cameraMode(pkt)),
		)
	}

	close(done)
	fmt.Println()
}

func cameraMode(pkt packet.Packet) string {
	mode := camera.Mode(pkt.CameraMode).String()
	if pkt.Transitioning {
		return fmt.Sprintf("%s %3.0f%%", mode, pkt.CameraProgress*100)
	}

	return mode
}
