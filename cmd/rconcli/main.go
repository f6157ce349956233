// Command rconcli is a minimal interactive client for battlelayer
// servers: it dials one server, then relays stdin lines to it and
// response words back to stdout (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avitex/battlelayer/cli"
	"github.com/avitex/battlelayer/conn"
	"github.com/avitex/battlelayer/packet"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:27015", "server address to dial")
	network := flag.String("network", "tcp", "network to dial (tcp, unix, ...)")
	flag.Parse()

	ctx := context.Background()
	c, err := conn.NewBuilder(packet.RoleClient).Dial(ctx, *network, *addr)
	if err != nil {
		log.Fatalf("rconcli: %v", err)
	}
	defer c.Close()

	if err := cli.RunREPL(ctx, os.Stdin, os.Stdout, c); err != nil {
		fmt.Fprintln(os.Stderr, "rconcli:", err)
		os.Exit(1)
	}
}
