package client

import (
	"bufio"
	"fmt"
	"net"

	"github.com/pondhq/pond/internal/protocol"
	"github.com/spf13/cobra"
)

// NewInjectCommand returns the `pond inject` subcommand.
func NewInjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject SERVER[:PORT]",
		Short: "Read newline-delimited datagrams from stdin and inject them",
		Args:  cobra.ExactArgs(1),
		RunE:  runInject,
	}
	return cmd
}

func runInject(cmd *cobra.Command, args []string) error {
	addr := withDefaultPort(args[0])

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), protocol.MaxPayloadSize)

	var id uint16 = 1
	var sent int
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := protocol.WriteFrame(conn, id, uint16(protocol.CmdInjectLogRecord), line); err != nil {
			return err
		}
		sent++
		id++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d record(s)\n", sent)
	return nil
}
