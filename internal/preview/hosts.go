package preview

import (
	"os"
	"strings"
	"sync"
	"time"

	"bubbleview/pkg/log"

	"gopkg.in/yaml.v3"
)

// HostLabel replaces a link's hostname with a fixed site label and,
// optionally, a custom call to action.
type HostLabel struct {
	Label  string `yaml:"label"`
	Action string `yaml:"action"`
}

// HostLabeler looks up the special-cased label for a hostname.
type HostLabeler interface {
	LookupHost(hostname string) (HostLabel, bool)
}

var defaultHostLabels = map[string]HostLabel{
	"twitter.com":   {Label: "X", Action: "Visit Tweet"},
	"x.com":         {Label: "X", Action: "Visit Tweet"},
	"youtube.com":   {Label: "YouTube", Action: "Watch Video"},
	"youtu.be":      {Label: "YouTube", Action: "Watch Video"},
	"instagram.com": {Label: "Instagram"},
	"tiktok.com":    {Label: "TikTok"},
	"linkedin.com":  {Label: "LinkedIn"},
	"github.com":    {Label: "GitHub"},
}

// HostTable is a HostLabeler backed by a map. When loaded from a file it
// polls the file and reloads it on change.
type HostTable struct {
	mu     sync.RWMutex
	labels map[string]HostLabel

	path        string
	lastModTime time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewHostTable builds a table from labels. Keys are matched case-insensitively.
func NewHostTable(labels map[string]HostLabel) *HostTable {
	t := &HostTable{stop: make(chan struct{})}
	t.set(labels)
	return t
}

// DefaultHosts returns the built-in social and media platform labels.
func DefaultHosts() *HostTable {
	return NewHostTable(defaultHostLabels)
}

// hostsFile is the YAML layout of a host label file:
//
//	hosts:
//	  twitter.com: {label: X, action: Visit Tweet}
type hostsFile struct {
	Hosts map[string]HostLabel `yaml:"hosts"`
}

// LoadHosts reads a YAML host label file on top of the defaults and starts
// a watcher that reloads it every interval. Call Close to stop watching.
func LoadHosts(path string, interval time.Duration) (*HostTable, error) {
	t := &HostTable{path: path, stop: make(chan struct{})}
	if err := t.reload(); err != nil {
		return nil, err
	}
	if interval > 0 {
		go t.watch(interval)
	}
	return t, nil
}

// LookupHost matches hostname and then each parent domain, so
// mobile.twitter.com resolves to the twitter.com entry.
func (t *HostTable) LookupHost(hostname string) (HostLabel, bool) {
	host := strings.TrimPrefix(strings.ToLower(hostname), "www.")
	t.mu.RLock()
	defer t.mu.RUnlock()
	for host != "" {
		if l, ok := t.labels[host]; ok {
			return l, true
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			break
		}
		host = host[dot+1:]
	}
	return HostLabel{}, false
}

// Close stops the file watcher, if any.
func (t *HostTable) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *HostTable) set(labels map[string]HostLabel) {
	m := make(map[string]HostLabel, len(labels))
	for host, l := range labels {
		m[strings.ToLower(host)] = l
	}
	t.mu.Lock()
	t.labels = m
	t.mu.Unlock()
}

func (t *HostTable) reload() error {
	info, err := os.Stat(t.path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}
	var raw hostsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	merged := make(map[string]HostLabel, len(defaultHostLabels)+len(raw.Hosts))
	for h, l := range defaultHostLabels {
		merged[h] = l
	}
	for h, l := range raw.Hosts {
		merged[h] = l
	}
	t.set(merged)
	t.lastModTime = info.ModTime()
	return nil
}

func (t *HostTable) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			info, err := os.Stat(t.path)
			if err != nil || !info.ModTime().After(t.lastModTime) {
				continue
			}
			if err := t.reload(); err != nil {
				log.GlobalWarn("host labels reload failed", "path", t.path, "error", err)
				continue
			}
			log.GlobalInfo("host labels reloaded", "path", t.path)
		}
	}
}
