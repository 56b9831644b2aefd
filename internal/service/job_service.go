package service

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

type cacheInvalidator interface {
	Invalidate() int
}

// JobService runs periodic maintenance on the key/value cache.
type JobService struct {
	cache cacheInvalidator
	cron  *cron.Cron
}

func NewJobService(cache cacheInvalidator) *JobService {
	return &JobService{cache: cache, cron: cron.New()}
}

// InvalidateCache drops cached entries so writes made by other server
// instances against the same database become visible.
func (s *JobService) InvalidateCache() int {
	n := s.cache.Invalidate()
	log.Printf("Cron Job: dropped %d cached store entries", n)
	return n
}

// Start schedules the cache sweep with a cron spec such as "@every 5m".
func (s *JobService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.InvalidateCache() }); err != nil {
		return fmt.Errorf("cron job: invalid schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("Cron Job: cache sweep scheduled (%s)", spec)
	return nil
}

func (s *JobService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
