// Command generate-vapid prints a fresh VAPID key pair for the push
// sender. Run once and put the output in the server's environment.
package main

import (
	"fmt"
	"log"

	"github.com/thecoder877/Vrticko/utils"
)

func main() {
	publicKey, privateKey, err := utils.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("❌ Failed to generate VAPID keys: %v", err)
	}

	fmt.Println("# Add these to your .env:")
	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Println("VAPID_SUBJECT=mailto:noreply@vrticko.com")
}
