package client

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pondhq/pond/internal/datagram"
	"github.com/pondhq/pond/internal/protocol"
	"github.com/spf13/cobra"
)

// queryID is the only query this client ever opens per connection.
const queryID = 1

// NewQueryCommand returns the `pond query` subcommand.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query SERVER[:PORT]",
		Short: "Query a Pond server and print matching records as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().Bool("follow", false, "keep the connection open and stream new matching records")
	cmd.Flags().String("site", "", "filter: exact site")
	cmd.Flags().String("host", "", "filter: exact host")
	cmd.Flags().String("uri", "", "filter: URI substring")
	cmd.Flags().String("since", "", "filter: RFC3339 lower time bound")
	cmd.Flags().String("until", "", "filter: RFC3339 upper time bound")
	cmd.Flags().Int("status", 0, "filter: exact HTTP status")
	cmd.Flags().Int("status-class", 0, "filter: status class, e.g. 5 for any 5xx")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	addr := withDefaultPort(args[0])

	follow, _ := cmd.Flags().GetBool("follow")
	site, _ := cmd.Flags().GetString("site")
	host, _ := cmd.Flags().GetString("host")
	uri, _ := cmd.Flags().GetString("uri")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	status, _ := cmd.Flags().GetInt("status")
	statusClass, _ := cmd.Flags().GetInt("status-class")

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdQuery), nil); err != nil {
		return err
	}
	if site != "" {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterSite), []byte(site)); err != nil {
			return err
		}
	}
	if host != "" {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterHost), []byte(host)); err != nil {
			return err
		}
	}
	if uri != "" {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterURI), []byte(uri)); err != nil {
			return err
		}
	}
	if since != "" {
		payload, err := encodeTime(since)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterSince), payload); err != nil {
			return err
		}
	}
	if until != "" {
		payload, err := encodeTime(until)
		if err != nil {
			return fmt.Errorf("--until: %w", err)
		}
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterUntil), payload); err != nil {
			return err
		}
	}
	if status != 0 {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterStatus), encodeStatusFilter(0, status)); err != nil {
			return err
		}
	}
	if statusClass != 0 {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFilterStatus), encodeStatusFilter(1, statusClass)); err != nil {
			return err
		}
	}
	if follow {
		if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdFollow), nil); err != nil {
			return err
		}
	}
	if err := protocol.WriteFrame(conn, queryID, uint16(protocol.CmdCommit), nil); err != nil {
		return err
	}

	if follow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for {
		f, err := protocol.ReadFrame(conn)
		if err != nil {
			if follow {
				return nil
			}
			return err
		}
		if f.ID != queryID {
			continue
		}
		switch protocol.ResponseCommand(f.Command) {
		case protocol.CmdNop:
		case protocol.CmdError:
			return fmt.Errorf("server error: %s", f.Payload)
		case protocol.CmdEnd:
			return nil
		case protocol.CmdLogRecord:
			p, err := datagram.Parse(f.Payload)
			if err != nil {
				continue
			}
			if err := enc.Encode(p); err != nil {
				return err
			}
		}
	}
}

func encodeTime(s string) ([]byte, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf, nil
}

func encodeStatusFilter(mode byte, value int) []byte {
	buf := make([]byte, 3)
	buf[0] = mode
	binary.BigEndian.PutUint16(buf[1:3], uint16(value))
	return buf
}
