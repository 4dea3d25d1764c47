// fsmount mounts one FS.* filesystem key as a FUSE filesystem, talking to
// a separately running fsserver over the wire protocol. Grounded on
// original_source/mount/cmd/redis-fs-mount/main.go, adapted from a direct
// Redis connection to internal/wire.Client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AnishMulay/redisfs/internal/fusebridge"
	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "localhost:7070", "fsserver address")
	attrTimeout := flag.Float64("attr-timeout", 1.0, "attribute cache TTL in seconds")
	readOnly := flag.Bool("readonly", false, "mount read-only")
	allowOther := flag.Bool("allow-other", false, "allow other users to access the mount")
	foreground := flag.Bool("foreground", true, "run in foreground")
	debug := flag.Bool("debug", false, "enable FUSE debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <fs-key> <mountpoint>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mount an FS.* filesystem key via FUSE.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	if !*foreground && os.Getenv("FSMOUNT_DAEMON") != "1" {
		daemonize()
		return
	}

	fsKey := flag.Arg(0)
	mountpoint := flag.Arg(1)

	fi, err := os.Stat(mountpoint)
	if err != nil {
		log.Fatalf("mountpoint error: %v", err)
	}
	if !fi.IsDir() {
		log.Fatalf("mountpoint %s is not a directory", mountpoint)
	}

	logging.Init(logging.InfoLevel, logging.ConsoleFormat)
	fslog := logging.New("fsmount")

	c := wire.New(*serverAddr, fsKey)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err = c.Info(ctx)
	cancel()
	if err != nil {
		log.Fatalf("cannot reach fsserver at %s: %v", *serverAddr, err)
	}

	uid, gid := fusebridge.GetOwnership()

	opts := &fusebridge.Options{
		AttrTimeout: time.Duration(*attrTimeout * float64(time.Second)),
		ReadOnly:    *readOnly,
		AllowOther:  *allowOther,
		Debug:       *debug,
		UID:         uid,
		GID:         gid,
	}

	log.Printf("Mounting FS key %q at %s", fsKey, mountpoint)
	log.Printf("fsserver: %s", *serverAddr)

	server, err := fusebridge.Mount(mountpoint, c, opts, fslog)
	if err != nil {
		log.Fatalf("mount failed: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, unmounting...", sig)
		if err := server.Unmount(); err != nil {
			log.Printf("unmount error: %v", err)
		}
	}()

	log.Printf("Filesystem mounted. Press Ctrl+C to unmount.")
	server.Wait()
	log.Printf("Unmounted.")
}

func daemonize() {
	args := make([]string, 0, len(os.Args))
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--foreground" {
			i++
			continue
		}
		if strings.HasPrefix(a, "--foreground=") {
			continue
		}
		args = append(args, a)
	}
	args = append(args, "--foreground=true")

	cmd := exec.Command(os.Args[0], args...)
	cmd.Env = append(os.Environ(), "FSMOUNT_DAEMON=1")
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		log.Fatalf("daemon mode failed opening %s: %v", os.DevNull, err)
	}
	defer devNull.Close()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		log.Fatalf("daemon mode failed: %v", err)
	}
	fmt.Printf("fsmount started in background (pid %d)\n", cmd.Process.Pid)
}
