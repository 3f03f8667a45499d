package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Prints the bcrypt hash of an admin API key. Put the output in
// ADMIN_API_KEY_HASH and send the plain key in the X-API-Key header.
func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s <api-key>", os.Args[0])
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash key: %v", err)
	}

	fmt.Println(string(hash))
}
