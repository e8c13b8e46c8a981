package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/stanimation3d/bessambly/encode"
	"github.com/stanimation3d/bessambly/lower"
	"github.com/stanimation3d/bessambly/optimize"
	"github.com/stanimation3d/bessambly/parser"
	"github.com/stanimation3d/bessambly/semantic"
)

// ErrJobNotFound is returned when a job ID does not exist.
var ErrJobNotFound = errors.New("job not found")

// JobManager runs and tracks compile jobs, broadcasting status changes
// to any subscribed WebSocket clients.
type JobManager struct {
	jobs        map[string]*Job
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewJobManager creates a JobManager that reports through broadcaster.
func NewJobManager(broadcaster *Broadcaster) *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: broadcaster,
	}
}

// Submit runs the full compile pipeline synchronously and stores the
// resulting Job under a freshly generated ID.
func (jm *JobManager) Submit(req CompileRequest) (*Job, error) {
	id, err := generateJobID()
	if err != nil {
		return nil, err
	}

	optLevel := req.OptLevel
	if optLevel == "" {
		optLevel = "0"
	}
	target := req.Target
	if target == "" {
		target = "unix"
	}

	job := &Job{
		ID:        id,
		Status:    StatusCompiling,
		OptLevel:  optLevel,
		Target:    target,
		CreatedAt: time.Now(),
	}

	jm.mu.Lock()
	jm.jobs[id] = job
	jm.mu.Unlock()

	jm.runPipeline(job, req.Source)

	return job, nil
}

func (jm *JobManager) runPipeline(job *Job, source string) {
	fail := func(line int, message string) {
		job.Status = StatusFailed
		job.Diagnostics = append(job.Diagnostics, Diagnostic{Line: line, Message: message})
		jm.broadcaster.BroadcastJobStatus(job.ID, job.Status)
	}

	p := parser.New(source)
	prog, perr := p.Parse()
	if perr != nil {
		fail(perr.Line, perr.Message)
		return
	}

	if _, serr := semantic.Analyze(prog); serr != nil {
		fail(serr.Line, serr.Message)
		return
	}

	lowered, lerr := lower.Lower(prog)
	if lerr != nil {
		fail(lerr.Line, lerr.Message)
		return
	}

	level, ok := optimize.ParseLevel(job.OptLevel)
	if !ok {
		fail(0, "unrecognized optimization level: "+job.OptLevel)
		return
	}
	optimize.Run(lowered.Buffer, level)

	enc := encode.New(encode.LabelMap(lowered.Labels))
	words, eerr := enc.EncodeBuffer(lowered.Buffer)
	if eerr != nil {
		fail(0, eerr.Error())
		return
	}

	job.Words = words
	job.Status = StatusSucceeded
	jm.broadcaster.BroadcastJobStatus(job.ID, job.Status)
}

// Get retrieves a job by ID.
func (jm *JobManager) Get(id string) (*Job, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Delete removes a job by ID.
func (jm *JobManager) Delete(id string) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if _, ok := jm.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(jm.jobs, id)
	return nil
}

// List returns a summary of every tracked job.
func (jm *JobManager) List() []Summary {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	summaries := make([]Summary, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		summaries = append(summaries, Summary{ID: job.ID, Status: job.Status, CreatedAt: job.CreatedAt})
	}
	return summaries
}

// Count returns the number of tracked jobs.
func (jm *JobManager) Count() int {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return len(jm.jobs)
}

func generateJobID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
