//go:build linux

// Command attcentral is a small driver for exercising an ATT engine against
// a real peripheral from the command line: connect, discover, read, write,
// and subscribe, one subcommand each.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/xc-ble/attc"
	"github.com/xc-ble/attc/centralpipe"
)

func main() {
	app := cli.NewApp()
	app.Name = "attcentral"
	app.Usage = "drive an ATT engine against a peripheral"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Usage: "peer Bluetooth address, AA:BB:CC:DD:EE:FF"},
		cli.BoolFlag{Name: "random", Usage: "peer uses a random LE address"},
		cli.IntFlag{Name: "mtu", Value: att.DefaultMTU, Usage: "initial MTU if the kernel's inbound MTU cannot be read"},
		cli.BoolFlag{Name: "verbose"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "discover",
			Usage:     "run Read By Group Type over [start,end] for a service UUID",
			ArgsUsage: "<start-handle> <end-handle> <uuid>",
			Action:    discoverCmd,
		},
		{
			Name:      "read",
			Usage:     "issue a Read Request",
			ArgsUsage: "<handle>",
			Action:    readCmd,
		},
		{
			Name:      "write",
			Usage:     "issue a Write Request",
			ArgsUsage: "<handle> <hex-value>",
			Action:    writeCmd,
		},
		{
			Name:      "subscribe",
			Usage:     "print notifications for a handle until interrupted",
			ArgsUsage: "<handle>",
			Action:    subscribeCmd,
		},
		{
			Name:      "pipe",
			Usage:     "bridge a local TCP listener to a (write-handle, notify-handle) pair",
			ArgsUsage: "<listen-addr> <write-handle> <notify-handle>",
			Action:    pipeCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "attcentral:", err)
		os.Exit(1)
	}
}

func dialFromCtx(c *cli.Context) (*attEngineCloser, error) {
	log := logrus.StandardLogger()
	if c.GlobalBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	addrType := att.AddressTypePublic
	if c.GlobalBool("random") {
		addrType = att.AddressTypeRandom
	}

	eng, err := att.DialWithLogger(log,
		att.WithAddress(c.GlobalString("addr"), addrType),
		att.WithMTU(c.GlobalInt("mtu")),
	)
	if err != nil {
		return nil, err
	}
	eng.OnError(func(err error) { log.WithError(err).Warn("attcentral: unhandled protocol event") })
	return &attEngineCloser{eng}, nil
}

type attEngineCloser struct{ *att.Engine }

func parseHandle(s string) (att.Handle, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid handle %q: %w", s, err)
	}
	return att.Handle(n), nil
}

func discoverCmd(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.NewExitError("usage: discover <start-handle> <end-handle> <uuid>", 1)
	}
	start, err := parseHandle(c.Args().Get(0))
	if err != nil {
		return err
	}
	end, err := parseHandle(c.Args().Get(1))
	if err != nil {
		return err
	}
	typeUUID, err := att.ParseUUID(c.Args().Get(2))
	if err != nil {
		return err
	}

	eng, err := dialFromCtx(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	done := make(chan error, 1)
	eng.ReadByGroupType(start, end, typeUUID, func(result []att.GroupAttributeData, err error) {
		if err != nil {
			done <- err
			return
		}
		for _, g := range result {
			fmt.Printf("%s..%s: % x\n", g.Handle, g.GroupEndHandle, g.Value)
		}
		done <- nil
	})
	return <-done
}

func readCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: read <handle>", 1)
	}
	handle, err := parseHandle(c.Args().Get(0))
	if err != nil {
		return err
	}

	eng, err := dialFromCtx(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	done := make(chan error, 1)
	eng.ReadAttribute(handle, func(value []byte, err error) {
		if err != nil {
			done <- err
			return
		}
		fmt.Printf("% x\n", value)
		done <- nil
	})
	return <-done
}

func writeCmd(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: write <handle> <hex-value>", 1)
	}
	handle, err := parseHandle(c.Args().Get(0))
	if err != nil {
		return err
	}
	value, err := parseHex(c.Args().Get(1))
	if err != nil {
		return err
	}

	eng, err := dialFromCtx(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	done := make(chan error, 1)
	eng.WriteRequest(handle, value, func(err error) { done <- err })
	return <-done
}

func subscribeCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: subscribe <handle>", 1)
	}
	handle, err := parseHandle(c.Args().Get(0))
	if err != nil {
		return err
	}

	eng, err := dialFromCtx(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.SubscribeNotifications(handle, func(value []byte) {
		fmt.Printf("%s: % x\n", time.Now().Format(time.RFC3339), value)
	})

	select {}
}

func pipeCmd(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.NewExitError("usage: pipe <listen-addr> <write-handle> <notify-handle>", 1)
	}
	writeHandle, err := parseHandle(c.Args().Get(1))
	if err != nil {
		return err
	}
	notifyHandle, err := parseHandle(c.Args().Get(2))
	if err != nil {
		return err
	}

	eng, err := dialFromCtx(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	p := centralpipe.New(eng, writeHandle, notifyHandle)
	l, err := centralpipe.Listen(c.Args().Get(0), p, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Println("listening on", l.Addr())
	return l.Serve()
}

func parseHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex value %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		var b int64
		_, err := fmt.Sscanf(s[i*2:i*2+2], "%02x", &b)
		if err != nil {
			return nil, fmt.Errorf("invalid hex value %q: %w", s, err)
		}
		out[i] = byte(b)
	}
	return out, nil
}
