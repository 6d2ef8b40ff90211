package main

import (
	"fmt"
	"log"

	"github.com/mlsorensen/gomount"
	_ "github.com/mlsorensen/gomount/pkg/mounts/all"
)

func main() {
	log.Println("--- GoMount Scanner Test ---")
	log.Println("Looking for known USB serial bridges...")
	log.Println("Plug the mount's hand controller cable in now.")

	// Scan matches only the USB bridge chips known to ship on mount serial
	// cables. Pass additional gomount.UsbID values to widen the match, or
	// use ScanAll to list every serial port on the machine.
	ports, err := gomount.Scan()
	if err != nil {
		log.Fatalf("Fatal: Scan failed: %v", err)
	}

	if len(ports) == 0 {
		log.Println("\nScan complete. No mount serial bridge found.")
		log.Println("Tip: If your cable uses a different bridge chip, run with ScanAll and pick the port manually.")

		all, err := gomount.ScanAll()
		if err != nil {
			log.Fatalf("Fatal: ScanAll failed: %v", err)
		}
		fmt.Println("\n--- All Serial Ports ---")
		for i, port := range all {
			fmt.Printf("%d: %s\n", i+1, port.Path)
		}
		fmt.Println("------------------------")
		return
	}

	fmt.Println("\n--- Found Mount Serial Bridges ---")
	for i, port := range ports {
		fmt.Printf("%d: Path: %s\n", i+1, port.Path)
		fmt.Printf("   VID:  %s\n", port.VID)
		fmt.Printf("   PID:  %s\n", port.PID)
		if port.Serial != "" {
			fmt.Printf("   S/N:  %s\n", port.Serial)
		}
		fmt.Println()
	}
	fmt.Println("----------------------------------")
}
