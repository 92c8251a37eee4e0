package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Cache is a small string key/value store persisted as one json file.
// Keys are case insensitive.
type Cache struct {
	mu   sync.Mutex
	path string
	data *simpleCache
}

type simpleCache struct {
	Data map[string]string `json:"Data"`
}

func New(path string) *Cache {
	return &Cache{path: path}
}

func (c *Cache) persist() error {
	jsonData, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path, jsonData, 0644)
}

func (c *Cache) load() *simpleCache {
	if c.data != nil {
		return c.data
	}
	c.data = &simpleCache{
		Data: map[string]string{},
	}
	content, err := os.ReadFile(c.path)
	if err != nil {
		// WARNING: swallow error here
		return c.data
	}
	if err = json.Unmarshal(content, c.data); err != nil || c.data.Data == nil {
		// WARNING: swallow error here
		c.data.Data = map[string]string{}
	}
	return c.data
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, found := c.load().Data[strings.ToLower(key)]
	return value, found
}

func (c *Cache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load().Data[strings.ToLower(key)] = value
	return c.persist()
}

func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.load().Data, strings.ToLower(key))
	return c.persist()
}
