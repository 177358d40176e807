package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce window for watch mode; editors fire several events per save.
const watchDebounce = 100 * time.Millisecond

// watchScript runs the script, then reruns it whenever it changes on disk.
// The watch is on the script's directory, not the file: editors that save
// by renaming a temporary file over the script would break a watch on the
// file itself.
func watchScript(fds [3]*os.File, args []string, sess *session, cfg *scriptCfg) int {
	name, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(fds[2], "cannot get full path of script %q: %v\n", args[0], err)
		return 2
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(fds[2], "cannot watch %q: %v\n", name, err)
		return 2
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		fmt.Fprintf(fds[2], "cannot watch %q: %v\n", name, err)
		return 2
	}

	status := runScript(fds, args, sess, cfg)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return status
			}
			if filepath.Base(event.Name) != filepath.Base(name) ||
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce(watcher.Events, watchDebounce)
			fmt.Fprintf(fds[2], "rerunning %s\n", args[0])
			status = runScript(fds, args, sess, cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return status
			}
			logger.Println("watcher error:", err)
		case <-cfg.stop:
			return status
		}
	}
}

// debounce drains events until the window passes without one.
func debounce(events <-chan fsnotify.Event, window time.Duration) {
	timer := time.NewTimer(window)
	defer timer.Stop()
	for {
		select {
		case <-events:
			timer.Reset(window)
		case <-timer.C:
			return
		}
	}
}
