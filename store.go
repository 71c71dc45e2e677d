package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

const (
	taskPrefix       = "task"
	connectionPrefix = "conn"
)

// Store persists tasks and connections. The canvas reads everything once at
// startup and writes through on every change.
type Store interface {
	Tasks(ctx context.Context) ([]Task, error)
	SaveTask(task *Task) error
	DeleteTask(id string) error
	Connections(ctx context.Context) ([]TaskConnection, error)
	SaveConnection(conn TaskConnection) error
	DeleteConnection(id string) error
}

type diskStore struct {
	d *diskv.Diskv
}

// OpenStore opens a diskv store rooted at basePath. Records are JSON files
// under basePath/task and basePath/conn.
func OpenStore(basePath string) (Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("store: empty base path")
	}
	return &diskStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024,
	})}, nil
}

// Keys look like `task-<uuid>`. Only the first dash separates the prefix
// since ids carry dashes of their own.
func keyToPathTransform(key string) *diskv.PathKey {
	prefix, id, ok := strings.Cut(key, "-")
	if !ok {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{Path: []string{prefix}, FileName: id}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pk.Path, "-"), pk.FileName)
}

func recordKey(prefix, id string) string {
	return prefix + "-" + id
}

func (s *diskStore) Tasks(ctx context.Context) ([]Task, error) {
	tasks := make([]Task, 0)
	for key := range s.d.KeysPrefix(taskPrefix+"-", ctx.Done()) {
		data, err := s.d.Read(key)
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", key, err)
		}
		tasks = append(tasks, task)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *diskStore) SaveTask(task *Task) error {
	if task.ID == "" {
		return fmt.Errorf("store: task without id")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("store: encode task %s: %w", task.ID, err)
	}
	if err := s.d.Write(recordKey(taskPrefix, task.ID), data); err != nil {
		return fmt.Errorf("store: write task %s: %w", task.ID, err)
	}
	return nil
}

func (s *diskStore) DeleteTask(id string) error {
	if err := s.d.Erase(recordKey(taskPrefix, id)); err != nil {
		return fmt.Errorf("store: erase task %s: %w", id, err)
	}
	return nil
}

func (s *diskStore) Connections(ctx context.Context) ([]TaskConnection, error) {
	conns := make([]TaskConnection, 0)
	for key := range s.d.KeysPrefix(connectionPrefix+"-", ctx.Done()) {
		data, err := s.d.Read(key)
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		var conn TaskConnection
		if err := json.Unmarshal(data, &conn); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", key, err)
		}
		conns = append(conns, conn)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].CreatedAt.Equal(conns[j].CreatedAt) {
			return conns[i].ID < conns[j].ID
		}
		return conns[i].CreatedAt.Before(conns[j].CreatedAt)
	})
	return conns, nil
}

func (s *diskStore) SaveConnection(conn TaskConnection) error {
	if conn.ID == "" {
		return fmt.Errorf("store: connection without id")
	}
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("store: encode connection %s: %w", conn.ID, err)
	}
	if err := s.d.Write(recordKey(connectionPrefix, conn.ID), data); err != nil {
		return fmt.Errorf("store: write connection %s: %w", conn.ID, err)
	}
	return nil
}

func (s *diskStore) DeleteConnection(id string) error {
	if err := s.d.Erase(recordKey(connectionPrefix, id)); err != nil {
		return fmt.Errorf("store: erase connection %s: %w", id, err)
	}
	return nil
}

// SaveImported writes a batch of imported records. If any write fails the
// records already written are erased so the store holds all or none of them.
func SaveImported(store Store, tasks []Task, conns []TaskConnection) error {
	var savedTasks, savedConns []string
	rollback := func(err error) error {
		for _, id := range savedConns {
			if derr := store.DeleteConnection(id); derr != nil {
				slog.Warn("rollback connection", "id", id, "err", derr)
			}
		}
		for _, id := range savedTasks {
			if derr := store.DeleteTask(id); derr != nil {
				slog.Warn("rollback task", "id", id, "err", derr)
			}
		}
		return fmt.Errorf("store: import: %w", err)
	}
	for i := range tasks {
		if err := store.SaveTask(&tasks[i]); err != nil {
			return rollback(err)
		}
		savedTasks = append(savedTasks, tasks[i].ID)
	}
	for _, conn := range conns {
		if err := store.SaveConnection(conn); err != nil {
			return rollback(err)
		}
		savedConns = append(savedConns, conn.ID)
	}
	return nil
}
