package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlsorensen/gomount"

	// This tells the Go compiler to include the package, which runs its init()
	// function. The init() function, in turn, calls gomount.Register(). You can
	// specify specific mounts individually or just "all"
	_ "github.com/mlsorensen/gomount/pkg/mounts/all"
)

func main() {
	log.Println("GoMount CLI Application Starting...")

	// The mock driver ignores the port, so an empty FoundPort is fine. In a
	// real program the port would come from gomount.Scan() or a config file.
	log.Println("Attempting to create a MOCK mount instance...")
	myMount, err := gomount.New("MOCK", &gomount.FoundPort{})
	if err != nil {
		log.Fatalf("Fatal: Could not create mount instance: %v", err)
	}
	log.Println("Successfully created mock mount instance.")

	// --- Set up graceful shutdown ---
	// This goroutine listens for OS signals (like Ctrl+C).
	// When a signal is caught, it closes the mount to trigger a clean shutdown.
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan // Block until a signal is received
		log.Println("Shutdown signal received. Closing mount...")
		_ = myMount.Close()
		os.Exit(0)
	}()

	model, err := myMount.GetModel()
	if err != nil {
		log.Fatalf("Fatal: Could not identify mount: %v", err)
	}
	log.Printf("Connected to a %s.", model)

	pos, err := myMount.GetPositionRADec()
	if err != nil {
		log.Fatalf("Fatal: Could not read position: %v", err)
	}
	log.Printf("Starting position: %s", pos)

	// Start a goto and poll until it lands, like a real client would.
	target := gomount.RADec{RA: 202.4695, Dec: -47.4795}
	log.Printf("--> Sending goto to %s...", target)
	if err := myMount.GotoRADec(target); err != nil {
		log.Fatalf("Fatal: Goto failed: %v", err)
	}

	for {
		moving, err := myMount.GotoInProgress()
		if err != nil {
			log.Fatalf("Fatal: Could not poll goto state: %v", err)
		}
		if !moving {
			break
		}
		pos, _ := myMount.GetPositionRADec()
		log.Printf("    slewing... now at %s", pos)
		time.Sleep(500 * time.Millisecond)
	}

	pos, _ = myMount.GetPositionRADec()
	log.Printf("Goto complete. Final position: %s", pos)

	// The Advanced VX mock carries an RTC but no GPS, so this demonstrates
	// both the happy path and the capability refusal.
	if _, err := myMount.Gps(); err != nil {
		log.Printf("GPS capability (expected to fail on this model): %v", err)
	}

	rtc, err := myMount.Rtc()
	if err != nil {
		log.Fatalf("Fatal: Could not get RTC capability: %v", err)
	}
	now, err := rtc.GetDateTime()
	if err != nil {
		log.Fatalf("Fatal: Could not read RTC: %v", err)
	}
	log.Printf("RTC reads: %s", now.Format(time.RFC3339))

	if err := myMount.Close(); err != nil {
		log.Fatalf("Fatal: Close failed: %v", err)
	}
	log.Println("Application finished gracefully.")
}
