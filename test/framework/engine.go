package framework

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint"
	"github.com/SAP/stewardci-provenance/pkg/fingerprinter"
	"github.com/SAP/stewardci-provenance/pkg/utils"
)

// Result is the outcome of a build.
type Result string

// Build results
const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// Step is a unit of work of a build.
// The running build is available via GetBuild(ctx).
type Step func(ctx context.Context) error

// Engine is an in-process job engine running builds as sequences of
// steps, each build in a fresh workspace.
type Engine struct {
	root          string
	fingerprinter *fingerprinter.Fingerprinter

	mutex sync.Mutex
	jobs  map[string]*Job
}

// NewEngine creates an engine keeping workspaces and the shared Maven
// repository below root.
func NewEngine(root string, fp *fingerprinter.Fingerprinter) *Engine {
	return &Engine{
		root:          root,
		fingerprinter: fp,
		jobs:          map[string]*Job{},
	}
}

// MavenRepository returns the local Maven repository shared by all
// builds of the engine.
func (e *Engine) MavenRepository() string {
	return filepath.Join(e.root, "m2", "repository")
}

// CreateJob creates a job with the given name.
func (e *Engine) CreateJob(name string) (*Job, error) {
	if name == "" {
		return nil, errors.New("job name is empty")
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if _, exists := e.jobs[name]; exists {
		return nil, fmt.Errorf("job %q already exists", name)
	}
	job := &Job{engine: e, name: name}
	e.jobs[name] = job
	return job, nil
}

// CreateUniqueJob creates a job with a random name starting with prefix.
func (e *Engine) CreateUniqueJob(prefix string) (*Job, error) {
	suffix, err := utils.RandomAlphaNumString(8)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate job name")
	}
	return e.CreateJob(prefix + "-" + suffix)
}

// Job is a pipeline of the engine.
type Job struct {
	engine *Engine
	name   string

	mutex      sync.Mutex
	lastNumber int
	builds     []*Build
}

// Compiler check for interface compliance
var _ fingerprint.Pipeline = (*Job)(nil)

// GetName implements fingerprint.Pipeline.
func (j *Job) GetName() string {
	return j.name
}

// Builds returns the scheduled builds of the job in order of their numbers.
func (j *Job) Builds() []*Build {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return append([]*Build(nil), j.builds...)
}

// ScheduleBuild runs a new build of the job executing steps in order.
// The build stops at the first failing step. The returned error is the
// error of that step; the build is returned in any case once it got a
// number.
func (j *Job) ScheduleBuild(ctx context.Context, steps ...Step) (*Build, error) {
	build, err := j.newBuild()
	if err != nil {
		return nil, err
	}
	ctx = SetBuild(utils.NewLoggingContext(ctx, "", "build", build.Ref().String()), build)
	logger := klog.FromContext(ctx)

	for i, step := range steps {
		if err := step(ctx); err != nil {
			build.result = ResultFailure
			logger.V(2).Info("Build failed", "step", i, "err", err)
			return build, errors.Wrapf(err, "build %s failed in step %d", build.Ref(), i)
		}
	}
	build.result = ResultSuccess
	logger.V(3).Info("Build succeeded")
	return build, nil
}

func (j *Job) newBuild() (*Build, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	number := j.lastNumber + 1
	workspace := filepath.Join(j.engine.root, "workspace", uuid.New().String())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create workspace of build %d of job %q", number, j.name)
	}
	build := &Build{job: j, number: number, workspace: workspace}
	j.lastNumber = number
	j.builds = append(j.builds, build)
	return build, nil
}

// Build is a single run of a job.
type Build struct {
	job       *Job
	number    int
	workspace string
	result    Result
}

// Compiler check for interface compliance
var _ fingerprint.Build = (*Build)(nil)

// GetNumber implements fingerprint.Build.
func (b *Build) GetNumber() int {
	return b.number
}

// Job returns the job the build belongs to.
func (b *Build) Job() *Job {
	return b.job
}

// Ref returns the reference of the build.
func (b *Build) Ref() api.BuildRef {
	return api.BuildRef{Job: b.job.name, Number: b.number}
}

// Workspace returns the workspace directory of the build.
func (b *Build) Workspace() string {
	return b.workspace
}

// Result returns the result of the build, empty while it is running.
func (b *Build) Result() Result {
	return b.result
}
