package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type MemoryDB struct {
	dbMap map[string]*CheckJob
	mu    sync.RWMutex
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{dbMap: make(map[string]*CheckJob)}
}

func (d *MemoryDB) Setup(c *Conf) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dbMap == nil {
		d.dbMap = make(map[string]*CheckJob)
	}
	return nil
}

func (d *MemoryDB) Insert(j *CheckJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[j.ID]; ok {
		return fmt.Errorf("check(%s) already exists", j.ID)
	}
	d.dbMap[j.ID] = j.Clone()
	return nil
}

func (d *MemoryDB) Get(jobID string) (*CheckJob, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if val, ok := d.dbMap[jobID]; ok {
		return val.Clone(), nil
	}
	err := fmt.Errorf("not found %s", jobID)
	zap.L().Info("[MemoryDB]", zap.Error(err))
	return nil, err
}

func (d *MemoryDB) Update(j *CheckJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[j.ID]; !ok {
		return fmt.Errorf("failed to find %s", j.ID)
	}
	d.dbMap[j.ID] = j.Clone()
	return nil
}

func (d *MemoryDB) Delete(jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[jobID]; ok {
		delete(d.dbMap, jobID)
		zap.L().Debug(fmt.Sprintf("[MemoryDB] deleted %s from DB", jobID))
		return nil
	}
	err := fmt.Errorf("failed to find %s", jobID)
	zap.L().Info("[MemoryDB]", zap.Error(err))
	return err
}

// List returns copies of all stored checks, oldest first.
func (d *MemoryDB) List() []*CheckJob {
	d.mu.RLock()
	defer d.mu.RUnlock()
	jobs := make([]*CheckJob, 0, len(d.dbMap))
	for _, j := range d.dbMap {
		jobs = append(jobs, j.Clone())
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		ta, tb := time.Time(jobs[a].Created), time.Time(jobs[b].Created)
		if ta.Equal(tb) {
			return jobs[a].ID < jobs[b].ID
		}
		return ta.Before(tb)
	})
	return jobs
}
