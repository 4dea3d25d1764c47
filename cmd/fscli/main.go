// fscli is an interactive wizard and process manager for fsserver and
// fsmount, grounded on original_source/mount/cmd/rfs/main.go's
// up/migrate/status/down subcommands and state-file pattern, adapted
// from managing redis-server+redis-fs-mount to managing our own
// fsserver+fsmount binaries over internal/wire instead of go-redis.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AnishMulay/redisfs/internal/fsys"
	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/wire"
)

// cliLog is console-pretty (ConsoleFormat), unlike fsserver's JSON writer,
// since fscli is run interactively rather than consumed by log
// aggregation.
var cliLog logging.Logger

type state struct {
	StartedAt    time.Time `json:"started_at"`
	ManageServer bool      `json:"manage_server"`
	ServerPID    int       `json:"server_pid"`
	ServerAddr   string    `json:"server_addr"`
	MountPID     int       `json:"mount_pid"`
	Mountpoint   string    `json:"mountpoint"`
	FSKey        string    `json:"fs_key"`
	ServerLog    string    `json:"server_log"`
	MountLog     string    `json:"mount_log"`
	ServerBin    string    `json:"server_bin"`
	MountBin     string    `json:"mount_bin"`
	ArchivePath  string    `json:"archive_path,omitempty"`
}

type config struct {
	UseExistingServer bool
	ServerBin         string
	ServerConfigPath  string
	ServerAddr        string
	FSKey             string
	Mountpoint        string
	MountBin          string
	ReadOnly          bool
	AllowOther        bool
	ServerLog         string
	MountLog          string
}

func main() {
	logging.Init(logging.InfoLevel, logging.ConsoleFormat)
	cliLog = logging.New("fscli")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "up":
		err = cmdUp()
	case "migrate":
		err = cmdMigrate()
	case "export":
		err = cmdExport(os.Args[2:])
	case "shell":
		err = cmdShell(os.Args[2:])
	case "status":
		err = cmdStatus()
	case "down":
		err = cmdDown()
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <up|migrate|export|shell|status|down>\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up      Interactive wizard to start fsserver + fsmount")
	fmt.Fprintln(os.Stderr, "  migrate Import a local directory, archive it, then mount the filesystem in place")
	fmt.Fprintln(os.Stderr, "  export  <server> <key> <destdir>  Export a filesystem key's tree to a local directory")
	fmt.Fprintln(os.Stderr, "  shell   <server> <key>            Interactive REPL issuing FS.* commands against a key")
	fmt.Fprintln(os.Stderr, "  status  Show status for managed daemons and mount")
	fmt.Fprintln(os.Stderr, "  down    Stop managed daemons and unmount")
}

func cmdUp() error {
	if st, err := loadState(); err == nil {
		if st.MountPID > 0 && processAlive(st.MountPID) {
			return fmt.Errorf("an existing managed mount process is running (pid %d). Run '%s down' first", st.MountPID, filepath.Base(os.Args[0]))
		}
	}

	cfg, err := runWizard(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	serverPID := 0
	if !cfg.UseExistingServer {
		pid, err := startServerDaemon(cfg)
		if err != nil {
			return err
		}
		serverPID = pid
		fmt.Printf("Started fsserver daemon (pid %d) at %s\n", pid, cfg.ServerAddr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := pingServer(ctx, cfg.ServerAddr, cfg.FSKey); err != nil {
		cancel()
		return fmt.Errorf("cannot reach fsserver at %s: %w", cfg.ServerAddr, err)
	}
	cancel()

	if err := os.MkdirAll(cfg.Mountpoint, 0o755); err != nil {
		return fmt.Errorf("create mountpoint: %w", err)
	}

	mpid, err := startMountDaemon(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Started mount daemon (pid %d)\n", mpid)

	if err := waitForMount(cfg.Mountpoint, 6*time.Second); err != nil {
		return fmt.Errorf("mount did not become ready: %w", err)
	}

	st := state{
		StartedAt:    time.Now().UTC(),
		ManageServer: !cfg.UseExistingServer,
		ServerAddr:   cfg.ServerAddr,
		MountPID:     mpid,
		Mountpoint:   cfg.Mountpoint,
		FSKey:        cfg.FSKey,
		ServerLog:    cfg.ServerLog,
		MountLog:     cfg.MountLog,
		ServerBin:    cfg.ServerBin,
		MountBin:     cfg.MountBin,
	}
	if !cfg.UseExistingServer {
		st.ServerPID = serverPID
	}

	if err := saveState(st); err != nil {
		return err
	}

	fmt.Println("All services are up.")
	fmt.Printf("Mountpoint: %s\n", cfg.Mountpoint)
	fmt.Printf("FS key:     %s\n", cfg.FSKey)
	fmt.Printf("Mount log:  %s\n", cfg.MountLog)
	if st.ManageServer {
		fmt.Printf("Server log: %s\n", cfg.ServerLog)
	}
	return nil
}

func cmdStatus() error {
	st, err := loadState()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No CLI state found. Nothing managed yet.")
			return nil
		}
		return err
	}

	fmt.Printf("Started at:  %s\n", st.StartedAt.Format(time.RFC3339))
	fmt.Printf("Server addr: %s\n", st.ServerAddr)
	fmt.Printf("FS key:      %s\n", st.FSKey)
	fmt.Printf("Mountpoint:  %s\n", st.Mountpoint)

	if st.ManageServer {
		fmt.Printf("Server daemon: %s", aliveString(st.ServerPID))
		if st.ServerPID > 0 {
			fmt.Printf(" (pid %d)", st.ServerPID)
		}
		fmt.Println()
	} else {
		fmt.Println("Server daemon: external (not managed by CLI)")
	}

	fmt.Printf("Mount daemon: %s", aliveString(st.MountPID))
	if st.MountPID > 0 {
		fmt.Printf(" (pid %d)", st.MountPID)
	}
	fmt.Println()

	if isMounted(st.Mountpoint) {
		fmt.Println("Mount state: mounted")
	} else {
		fmt.Println("Mount state: not mounted")
	}

	if st.MountLog != "" {
		fmt.Printf("Mount log: %s\n", st.MountLog)
	}
	if st.ManageServer && st.ServerLog != "" {
		fmt.Printf("Server log: %s\n", st.ServerLog)
	}
	if st.ArchivePath != "" {
		fmt.Printf("Archive:   %s\n", st.ArchivePath)
	}

	return nil
}

func cmdMigrate() error {
	if st, err := loadState(); err == nil {
		if st.MountPID > 0 && processAlive(st.MountPID) {
			return fmt.Errorf("an existing managed mount process is running (pid %d). Run '%s down' first", st.MountPID, filepath.Base(os.Args[0]))
		}
	}

	cfg, sourceDir, archiveDir, err := runMigrationWizard(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	serverPID := 0
	if !cfg.UseExistingServer {
		pid, err := startServerDaemon(cfg)
		if err != nil {
			return err
		}
		serverPID = pid
		fmt.Printf("Started fsserver daemon (pid %d) at %s\n", pid, cfg.ServerAddr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := pingServer(ctx, cfg.ServerAddr, cfg.FSKey); err != nil {
		return fmt.Errorf("cannot reach fsserver at %s: %w", cfg.ServerAddr, err)
	}

	c := wire.New(cfg.ServerAddr, cfg.FSKey)

	st, err := c.Stat(ctx, "/")
	if err != nil {
		return err
	}
	if st != nil {
		ok, err := promptYesNo(bufio.NewReader(os.Stdin), os.Stdout, fmt.Sprintf("FS key %q already has content. Overwrite it?", cfg.FSKey), false)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("migration cancelled")
		}
		names, err := c.Ls(ctx, "/")
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := c.Rm(ctx, "/"+name, true); err != nil {
				return fmt.Errorf("clear existing key: %w", err)
			}
		}
	}

	files, dirs, links, err := importDirectory(ctx, c, sourceDir)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d files, %d directories, %d symlinks into key %q\n", files, dirs, links, cfg.FSKey)

	if _, err := os.Stat(archiveDir); err == nil {
		return fmt.Errorf("archive path already exists: %s", archiveDir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.Rename(sourceDir, archiveDir); err != nil {
		return fmt.Errorf("rename source to archive failed: %w", err)
	}

	rollback := true
	defer func() {
		if rollback {
			_ = os.RemoveAll(sourceDir)
			_ = os.Rename(archiveDir, sourceDir)
		}
	}()

	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return fmt.Errorf("recreate mountpoint: %w", err)
	}
	cfg.Mountpoint = sourceDir

	mpid, err := startMountDaemon(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Started mount daemon (pid %d)\n", mpid)

	if err := waitForMount(cfg.Mountpoint, 8*time.Second); err != nil {
		return fmt.Errorf("mount did not become ready: %w", err)
	}

	savedState := state{
		StartedAt:    time.Now().UTC(),
		ManageServer: !cfg.UseExistingServer,
		ServerPID:    serverPID,
		ServerAddr:   cfg.ServerAddr,
		MountPID:     mpid,
		Mountpoint:   cfg.Mountpoint,
		FSKey:        cfg.FSKey,
		ServerLog:    cfg.ServerLog,
		MountLog:     cfg.MountLog,
		ServerBin:    cfg.ServerBin,
		MountBin:     cfg.MountBin,
		ArchivePath:  archiveDir,
	}
	if err := saveState(savedState); err != nil {
		return err
	}

	rollback = false
	fmt.Println("Migration complete.")
	fmt.Printf("Archived original directory at: %s\n", archiveDir)
	fmt.Printf("Filesystem mount active at:     %s\n", cfg.Mountpoint)
	return nil
}

func cmdExport(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: fscli export <server> <key> <destdir>")
	}
	serverAddr, key, destDir := args[0], args[1], args[2]

	destDir, err := expandPath(destDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	c := wire.New(serverAddr, key)
	if _, err := c.Info(ctx); err != nil {
		return fmt.Errorf("cannot reach fsserver at %s: %w", serverAddr, err)
	}

	files, dirs, links, err := exportDirectory(ctx, c, "/", destDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d files, %d directories, %d symlinks from key %q to %s\n", files, dirs, links, key, destDir)
	return nil
}

func exportDirectory(ctx context.Context, c *wire.Client, fsPath, localDir string) (files, dirs, symlinks int, err error) {
	entries, err := c.LsLong(ctx, fsPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("FS.LS %s: %w", fsPath, err)
	}

	for _, e := range entries {
		childFSPath := strings.TrimSuffix(fsPath, "/") + "/" + e.Name
		childLocalPath := filepath.Join(localDir, e.Name)

		switch e.Type {
		case fsys.TypeDir:
			if err := os.MkdirAll(childLocalPath, os.FileMode(e.Mode)|0o700); err != nil {
				return files, dirs, symlinks, err
			}
			dirs++
			subFiles, subDirs, subLinks, err := exportDirectory(ctx, c, childFSPath, childLocalPath)
			if err != nil {
				return files, dirs, symlinks, err
			}
			files += subFiles
			dirs += subDirs
			symlinks += subLinks
		case fsys.TypeSymlink:
			target, ok, err := c.Readlink(ctx, childFSPath)
			if err != nil {
				return files, dirs, symlinks, fmt.Errorf("FS.READLINK %s: %w", childFSPath, err)
			}
			if !ok {
				continue
			}
			_ = os.Remove(childLocalPath)
			if err := os.Symlink(target, childLocalPath); err != nil {
				return files, dirs, symlinks, err
			}
			symlinks++
		default:
			data, err := c.Cat(ctx, childFSPath)
			if err != nil {
				return files, dirs, symlinks, fmt.Errorf("FS.CAT %s: %w", childFSPath, err)
			}
			if err := os.WriteFile(childLocalPath, data, os.FileMode(e.Mode)|0o600); err != nil {
				return files, dirs, symlinks, err
			}
			files++
		}
	}
	return files, dirs, symlinks, nil
}

func cmdShell(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: fscli shell <server> <key>")
	}
	serverAddr, key := args[0], args[1]
	c := wire.New(serverAddr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err := c.Info(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot reach fsserver at %s: %w", serverAddr, err)
	}

	fmt.Printf("Connected to %s, key %q. Type a command (stat/test/cat/ls/mkdir/rm/mv), or 'exit'.\n", serverAddr, key)

	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("fscli> ")
		line, err := r.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		runShellCommand(context.Background(), c, line)
	}
}

func runShellCommand(ctx context.Context, c *wire.Client, line string) {
	fields := strings.Fields(line)
	cmdName, cmdArgs := strings.ToLower(fields[0]), fields[1:]

	result, err := dispatchShellCommand(ctx, c, cmdName, cmdArgs)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if result != "" {
		fmt.Println(result)
	}
}

func dispatchShellCommand(ctx context.Context, c *wire.Client, name string, args []string) (string, error) {
	switch name {
	case "stat":
		if len(args) != 1 {
			return "", errors.New("usage: stat <path>")
		}
		st, err := c.Stat(ctx, args[0])
		if err != nil {
			return "", err
		}
		if st == nil {
			return "no such path", nil
		}
		return fmt.Sprintf("type=%s mode=%04o uid=%d gid=%d size=%d", st.Type, st.Mode, st.UID, st.GID, st.Size), nil
	case "cat":
		if len(args) != 1 {
			return "", errors.New("usage: cat <path>")
		}
		data, err := c.Cat(ctx, args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "ls":
		path := "/"
		if len(args) > 0 {
			path = args[0]
		}
		names, err := c.Ls(ctx, path)
		if err != nil {
			return "", err
		}
		return strings.Join(names, "\n"), nil
	case "mkdir":
		if len(args) < 1 {
			return "", errors.New("usage: mkdir <path> [parents]")
		}
		return "OK", c.Mkdir(ctx, args[0], len(args) > 1)
	case "rm":
		if len(args) < 1 {
			return "", errors.New("usage: rm <path> [recursive]")
		}
		removed, err := c.Rm(ctx, args[0], len(args) > 1)
		if err != nil {
			return "", err
		}
		if removed {
			return "removed", nil
		}
		return "nothing to remove", nil
	case "mv":
		if len(args) != 2 {
			return "", errors.New("usage: mv <src> <dst>")
		}
		return "OK", c.Mv(ctx, args[0], args[1])
	case "test":
		if len(args) != 1 {
			return "", errors.New("usage: test <path>")
		}
		exists, err := c.Test(ctx, args[0])
		if err != nil {
			return "", err
		}
		if exists {
			return "exists", nil
		}
		return "does not exist", nil
	default:
		return "", fmt.Errorf("unknown command %q", name)
	}
}

func cmdDown() error {
	st, err := loadState()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No CLI state found. Nothing to stop.")
			return nil
		}
		return err
	}

	if isMounted(st.Mountpoint) {
		if err := unmount(st.Mountpoint); err != nil {
			return fmt.Errorf("unmount %s: %w", st.Mountpoint, err)
		}
		fmt.Printf("Unmounted %s\n", st.Mountpoint)
	}

	if st.MountPID > 0 {
		_ = terminatePID(st.MountPID, 2*time.Second)
	}
	if st.ManageServer && st.ServerPID > 0 {
		_ = terminatePID(st.ServerPID, 2*time.Second)
	}

	if err := os.Remove(statePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fmt.Println("Stopped managed services.")
	return nil
}

func pingServer(ctx context.Context, addr, key string) error {
	c := wire.New(addr, key)
	_, err := c.Info(ctx)
	return err
}

func runWizard(in io.Reader, out io.Writer) (config, error) {
	return runWizardWithReader(bufio.NewReader(in), out, "~/test", true)
}

func runWizardWithReader(r *bufio.Reader, out io.Writer, defaultMount string, promptMount bool) (config, error) {
	root := repoRootFromExecutable()
	defServerBin := filepath.Join(root, "fsserver")
	if _, err := os.Stat(defServerBin); err != nil {
		defServerBin = "fsserver"
	}
	defMountBin := filepath.Join(root, "fsmount")
	if _, err := os.Stat(defMountBin); err != nil {
		defMountBin = "fsmount"
	}

	cfg := config{
		ServerAddr: "localhost:7070",
		FSKey:      "fs:myfs",
		ServerLog:  "/tmp/fscli-server.log",
		MountLog:   "/tmp/fscli-mount.log",
	}

	fmt.Fprintln(out, "fscli setup")
	fmt.Fprintln(out, "-----------")

	useExisting, err := promptYesNo(r, out, "Use an already-running fsserver?", true)
	if err != nil {
		return cfg, err
	}
	cfg.UseExistingServer = useExisting

	addr, err := promptString(r, out, "fsserver address (host:port)", cfg.ServerAddr)
	if err != nil {
		return cfg, err
	}
	cfg.ServerAddr = addr

	if !cfg.UseExistingServer {
		serverBin, err := promptString(r, out, "Path to fsserver binary", defServerBin)
		if err != nil {
			return cfg, err
		}
		cfg.ServerBin, err = resolveBinary(serverBin)
		if err != nil {
			return cfg, err
		}

		serverConfig, err := promptString(r, out, "fsserver config file", "fsserver.yaml")
		if err != nil {
			return cfg, err
		}
		cfg.ServerConfigPath, err = expandPath(serverConfig)
		if err != nil {
			return cfg, err
		}

		serverLog, err := promptString(r, out, "fsserver log file", cfg.ServerLog)
		if err != nil {
			return cfg, err
		}
		cfg.ServerLog, err = expandPath(serverLog)
		if err != nil {
			return cfg, err
		}
	}

	mountBin, err := promptString(r, out, "Path to fsmount binary", defMountBin)
	if err != nil {
		return cfg, err
	}
	cfg.MountBin, err = resolveBinary(mountBin)
	if err != nil {
		return cfg, err
	}

	key, err := promptString(r, out, "Filesystem key", cfg.FSKey)
	if err != nil {
		return cfg, err
	}
	cfg.FSKey = key

	if promptMount {
		mp, err := promptString(r, out, "Mount directory", defaultMount)
		if err != nil {
			return cfg, err
		}
		cfg.Mountpoint, err = expandPath(mp)
		if err != nil {
			return cfg, err
		}
	} else {
		mp, err := expandPath(defaultMount)
		if err != nil {
			return cfg, err
		}
		cfg.Mountpoint = mp
	}

	ro, err := promptYesNo(r, out, "Mount read-only?", false)
	if err != nil {
		return cfg, err
	}
	cfg.ReadOnly = ro

	allowOther, err := promptYesNo(r, out, "Allow other users to access mount?", false)
	if err != nil {
		return cfg, err
	}
	cfg.AllowOther = allowOther

	mlog, err := promptString(r, out, "Mount log file", cfg.MountLog)
	if err != nil {
		return cfg, err
	}
	cfg.MountLog, err = expandPath(mlog)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func runMigrationWizard(in io.Reader, out io.Writer) (config, string, string, error) {
	r := bufio.NewReader(in)

	source, err := promptString(r, out, "Directory to migrate", "")
	if err != nil {
		return config{}, "", "", err
	}
	source, err = expandPath(source)
	if err != nil {
		return config{}, "", "", err
	}
	fi, err := os.Stat(source)
	if err != nil {
		return config{}, "", "", fmt.Errorf("source directory error: %w", err)
	}
	if !fi.IsDir() {
		return config{}, "", "", fmt.Errorf("source path is not a directory: %s", source)
	}
	if isMounted(source) {
		return config{}, "", "", fmt.Errorf("source directory is already a mountpoint: %s", source)
	}

	archiveDefault := source + ".archive"
	archiveDir, err := promptString(r, out, "Archive directory path", archiveDefault)
	if err != nil {
		return config{}, "", "", err
	}
	archiveDir, err = expandPath(archiveDir)
	if err != nil {
		return config{}, "", "", err
	}

	confirm, err := promptYesNo(r, out, "Proceed with migration (import, archive original, mount in place)?", false)
	if err != nil {
		return config{}, "", "", err
	}
	if !confirm {
		return config{}, "", "", errors.New("migration cancelled")
	}

	cfg, err := runWizardWithReader(r, out, source, false)
	if err != nil {
		return config{}, "", "", err
	}
	cfg.Mountpoint = source
	return cfg, source, archiveDir, nil
}

func importDirectory(ctx context.Context, c *wire.Client, source string) (files int, dirs int, symlinks int, err error) {
	err = filepath.WalkDir(source, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == source {
			return nil
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		fsPath := "/" + filepath.ToSlash(rel)

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}

		switch {
		case d.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := c.Ln(ctx, target, fsPath); err != nil {
				return fmt.Errorf("FS.LN %s: %w", fsPath, err)
			}
			symlinks++
		case d.IsDir():
			if err := c.Mkdir(ctx, fsPath, true); err != nil {
				return fmt.Errorf("FS.MKDIR %s: %w", fsPath, err)
			}
			dirs++
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if err := c.Echo(ctx, fsPath, data); err != nil {
				return fmt.Errorf("FS.ECHO %s: %w", fsPath, err)
			}
			files++
		}

		if err := applyMetadata(ctx, c, fsPath, info); err != nil {
			return err
		}
		return nil
	})
	return files, dirs, symlinks, err
}

func applyMetadata(ctx context.Context, c *wire.Client, path string, info os.FileInfo) error {
	if err := c.Chmod(ctx, path, uint32(info.Mode().Perm())); err != nil {
		return fmt.Errorf("FS.CHMOD %s: %w", path, err)
	}

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		if err := c.Chown(ctx, path, st.Uid, st.Gid, true); err != nil {
			return fmt.Errorf("FS.CHOWN %s: %w", path, err)
		}

		atimeMs := st.Atim.Sec*1000 + st.Atim.Nsec/1_000_000
		mtimeMs := st.Mtim.Sec*1000 + st.Mtim.Nsec/1_000_000
		if err := c.Utimens(ctx, path, atimeMs, mtimeMs); err != nil {
			return fmt.Errorf("FS.UTIMENS %s: %w", path, err)
		}
	}
	return nil
}

func startServerDaemon(cfg config) (int, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.ServerLog), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(cfg.ServerLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}

	args := []string{"--listen", cfg.ServerAddr}
	if cfg.ServerConfigPath != "" {
		args = append([]string{"--config", cfg.ServerConfigPath}, args...)
	}

	cmd := exec.Command(cfg.ServerBin, args...)
	cmd.Stdout = f
	cmd.Stderr = f
	devNull, err := os.Open(os.DevNull)
	if err == nil {
		defer devNull.Close()
		cmd.Stdin = devNull
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("start fsserver failed: %w", err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	_ = f.Close()
	cliLog.Info(logging.Event{Message: "started fsserver daemon", Metadata: map[string]any{"pid": pid, "addr": cfg.ServerAddr}})
	return pid, nil
}

func startMountDaemon(cfg config) (int, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.MountLog), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(cfg.MountLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}

	args := []string{
		"--server", cfg.ServerAddr,
		"--foreground",
		cfg.FSKey,
		cfg.Mountpoint,
	}
	if cfg.ReadOnly {
		args = append([]string{"--readonly"}, args...)
	}
	if cfg.AllowOther {
		args = append([]string{"--allow-other"}, args...)
	}

	cmd := exec.Command(cfg.MountBin, args...)
	cmd.Stdout = f
	cmd.Stderr = f
	devNull, err := os.Open(os.DevNull)
	if err == nil {
		defer devNull.Close()
		cmd.Stdin = devNull
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("start fsmount failed: %w", err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	_ = f.Close()
	cliLog.Info(logging.Event{Message: "started fsmount daemon", Metadata: map[string]any{"pid": pid, "mountpoint": cfg.Mountpoint}})
	return pid, nil
}

func waitForMount(mountpoint string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isMounted(mountpoint) {
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return errors.New("timeout waiting for mount")
}

func isMounted(mountpoint string) bool {
	b, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return false
	}
	needle := " " + mountpoint + " "
	return strings.Contains(string(b), needle)
}

func unmount(mountpoint string) error {
	cmds := [][]string{{"fusermount", "-u", mountpoint}, {"fusermount", "-uz", mountpoint}, {"umount", "-l", mountpoint}}
	for _, c := range cmds {
		cmd := exec.Command(c[0], c[1:]...)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return errors.New("all unmount commands failed")
}

func terminatePID(pid int, timeout time.Duration) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	_ = p.Signal(syscall.SIGTERM)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	_ = p.Signal(syscall.SIGKILL)
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil
}

func aliveString(pid int) string {
	if pid > 0 && processAlive(pid) {
		return "alive"
	}
	return "not running"
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".fscli")
}

func statePath() string {
	return filepath.Join(stateDir(), "state.json")
}

func saveState(st state) error {
	if err := os.MkdirAll(stateDir(), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(), b, 0o600)
}

func loadState() (state, error) {
	var st state
	b, err := os.ReadFile(statePath())
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, err
	}
	return st, nil
}

func promptString(r *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(line)
	if v == "" {
		return def, nil
	}
	return v, nil
}

func promptYesNo(r *bufio.Reader, out io.Writer, label string, def bool) (bool, error) {
	defMark := "y/N"
	if def {
		defMark = "Y/n"
	}
	fmt.Fprintf(out, "%s [%s]: ", label, defMark)
	line, err := r.ReadString('\n')
	if err != nil {
		return false, err
	}
	v := strings.ToLower(strings.TrimSpace(line))
	if v == "" {
		return def, nil
	}
	if v == "y" || v == "yes" {
		return true, nil
	}
	if v == "n" || v == "no" {
		return false, nil
	}
	return def, nil
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}

func resolveBinary(p string) (string, error) {
	if strings.Contains(p, "/") {
		return expandPath(p)
	}
	lp, err := exec.LookPath(p)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH", p)
	}
	return lp, nil
}

func repoRootFromExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		cwd, _ := os.Getwd()
		return cwd
	}
	return filepath.Dir(exe)
}

func fatal(err error) {
	cliLog.Error(logging.Event{Message: "fscli exiting", Metadata: map[string]any{"error": err.Error()}})
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
