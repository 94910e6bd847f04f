// Pre-generates a peer identity so a server's dialable address is known
// before its first start.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
)

func main() {
	dataDir := flag.String("data", "./data/ping-server", "Data directory to write identity.key into")
	port := flag.Int("port", 36341, "Listen port used in the printed dial address")
	flag.Parse()

	priv, pub, err := crypto.GenerateKeyPairWithReader(crypto.Ed25519, -1, rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key pair: %v\n", err)
		os.Exit(1)
	}

	peerID, err := peer.IDFromPublicKey(pub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to derive peer ID: %v\n", err)
		os.Exit(1)
	}

	data, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal private key: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	identityFile := filepath.Join(*dataDir, "identity.key")
	if _, err := os.Stat(identityFile); err == nil {
		fmt.Fprintf(os.Stderr, "refusing to overwrite existing %s\n", identityFile)
		os.Exit(1)
	}
	if err := os.WriteFile(identityFile, data, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Peer ID: %s\n", peerID)
	fmt.Printf("Identity saved to: %s\n", identityFile)
	fmt.Printf("Dial address: /ip4/127.0.0.1/tcp/%d/p2p/%s\n", *port, peerID)
}
