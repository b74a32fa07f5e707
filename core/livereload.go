package core

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const LiveReloadPath = "/__livereload"

const reloadWriteTimeout = time.Second

// LiveReloader tells connected browser tabs to reload when the site sources
// change. It owns the filesystem watcher that triggers it.
type LiveReloader struct {
	mu       sync.Mutex
	tabs     map[*websocket.Conn]struct{}
	watcher  *Watcher
	upgrader websocket.Upgrader
}

func NewLiveReloader() *LiveReloader {
	return &LiveReloader{tabs: make(map[*websocket.Conn]struct{})}
}

// Watch reloads every tab once changes under dir settle for delay. Calling
// it again replaces the previous watch.
func (lr *LiveReloader) Watch(dir string, delay time.Duration) error {
	w, err := WatchDir(dir, delay, func() { lr.Reload() })
	if err != nil {
		return err
	}

	lr.mu.Lock()
	prev := lr.watcher
	lr.watcher = w
	lr.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// ServeHTTP upgrades the page's script connection. The default origin check
// applies, so only the site's own pages can subscribe.
func (lr *LiveReloader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	lr.mu.Lock()
	lr.tabs[conn] = struct{}{}
	lr.mu.Unlock()

	go func() {
		defer lr.drop(conn)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (lr *LiveReloader) drop(conn *websocket.Conn) {
	lr.mu.Lock()
	delete(lr.tabs, conn)
	lr.mu.Unlock()
	conn.Close()
}

// Reload sends "reload" to every tab and returns how many received it. Tabs
// that fail the write are dropped.
func (lr *LiveReloader) Reload() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	sent := 0
	for conn := range lr.tabs {
		conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			delete(lr.tabs, conn)
			conn.Close()
			continue
		}
		sent++
	}

	log.Printf("livereload: reloaded %d tab(s)", sent)
	return sent
}

func (lr *LiveReloader) Clients() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.tabs)
}

// Close stops watching and disconnects every tab.
func (lr *LiveReloader) Close() error {
	lr.mu.Lock()
	w := lr.watcher
	lr.watcher = nil
	tabs := lr.tabs
	lr.tabs = make(map[*websocket.Conn]struct{})
	lr.mu.Unlock()

	for conn := range tabs {
		conn.Close()
	}
	if w != nil {
		return w.Close()
	}
	return nil
}
