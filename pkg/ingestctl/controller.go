/*
based on sample-controller from https://github.com/kubernetes/sample-controller/blob/7047ee6ceceef2118a2017bbfff4a86c1f56f1ca/controller.go
*/

package ingestctl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	wait "k8s.io/apimachinery/pkg/util/wait"
	workqueue "k8s.io/client-go/util/workqueue"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	metrics "github.com/SAP/stewardci-provenance/pkg/ingestctl/metrics"
	"github.com/SAP/stewardci-provenance/pkg/maintenancemode"
	"github.com/SAP/stewardci-provenance/pkg/registry"
	"github.com/SAP/stewardci-provenance/pkg/utils"
)

const (
	// heartbeatStimulusKey is a special key inserted into the controller
	// work queue as heartbeat stimulus.
	// It is not a valid build key to avoid conflicts with real reports.
	heartbeatStimulusKey = "Heartbeat Stimulus"

	// DefaultMaxRetries is the number of retries of a failing report
	// if not configured otherwise.
	DefaultMaxRetries = 5

	// DefaultMaintenanceModeRecheckInterval is the delay of reports
	// deferred in maintenance mode if not configured otherwise.
	DefaultMaintenanceModeRecheckInterval = 10 * time.Second
)

// Controller ingests fingerprint reports of completed builds.
type Controller struct {
	registry  registry.Registry
	records   registry.RecordStore
	workqueue workqueue.RateLimitingInterface
	clock     clock.Clock

	pendingLock sync.Mutex
	pending     map[string]*pendingReport

	maxRetries        int
	heartbeatInterval time.Duration
	heartbeatLogLevel *klog.Level

	maintenanceMode        maintenancemode.Checker
	maintenanceModeRecheck time.Duration
}

type pendingReport struct {
	report   api.FingerprintReport
	enqueued time.Time
}

// ControllerOpts stores options for the construction of a Controller
// instance.
type ControllerOpts struct {
	// MaxRetries is the number of retries of reports failing with
	// recoverable errors. If zero, DefaultMaxRetries is used.
	// If negative, failed reports are not retried.
	MaxRetries int

	// HeartbeatInterval is the interval for heartbeats.
	// If zero or negative, heartbeats are disabled.
	HeartbeatInterval time.Duration

	// HeartbeatLogLevel is a pointer to a klog log level to be used for
	// logging heartbeats.
	// If nil, heartbeat logging is disabled and heartbeats are only
	// exposed via metric.
	HeartbeatLogLevel *klog.Level

	// RateLimiter overrides the rate limiter of the workqueue.
	RateLimiter workqueue.RateLimiter

	// Clock overrides the clock used to measure ingest latency.
	Clock clock.Clock

	// MaintenanceMode is checked before each report. While maintenance
	// mode is enabled reports stay queued and nothing is written to the
	// registry. If nil, maintenance mode is never enabled.
	MaintenanceMode maintenancemode.Checker

	// MaintenanceModeRecheckInterval is the delay after which a report
	// deferred in maintenance mode is processed again.
	// If zero, DefaultMaintenanceModeRecheckInterval is used.
	MaintenanceModeRecheckInterval time.Duration
}

// NewController creates new Controller
func NewController(reg registry.Registry, records registry.RecordStore, opts ControllerOpts) *Controller {
	rateLimiter := opts.RateLimiter
	if rateLimiter == nil {
		rateLimiter = workqueue.DefaultControllerRateLimiter()
	}
	c := &Controller{
		registry:          reg,
		records:           records,
		workqueue:         workqueue.NewNamedRateLimitingQueue(rateLimiter, metrics.WorkqueueName),
		clock:             opts.Clock,
		pending:           map[string]*pendingReport{},
		maxRetries:        opts.MaxRetries,
		heartbeatInterval: opts.HeartbeatInterval,

		maintenanceMode:        opts.MaintenanceMode,
		maintenanceModeRecheck: opts.MaintenanceModeRecheckInterval,
	}
	if c.maintenanceModeRecheck <= 0 {
		c.maintenanceModeRecheck = DefaultMaintenanceModeRecheckInterval
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if opts.HeartbeatLogLevel != nil {
		copyOfValue := *opts.HeartbeatLogLevel
		c.heartbeatLogLevel = &copyOfValue
	}
	return c
}

// Enqueue validates report and queues it for ingestion.
// A report for the same build still waiting in the queue is replaced.
func (c *Controller) Enqueue(report api.FingerprintReport) error {
	if err := registry.ValidateRecord(report.Build, report.Record); err != nil {
		return errors.Wrap(err, "invalid fingerprint report")
	}
	if report.Record == nil {
		report.Record = api.FingerprintRecord{}
	}
	key := report.Build.String()

	c.pendingLock.Lock()
	c.pending[key] = &pendingReport{
		report:   report,
		enqueued: c.clock.Now(),
	}
	c.pendingLock.Unlock()

	c.workqueue.Add(key)
	return nil
}

// Len returns the number of reports not yet ingested.
func (c *Controller) Len() int {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	return len(c.pending)
}

// Run runs the controller until stopCh is closed.
func (c *Controller) Run(threadiness int, stopCh <-chan struct{}) error {
	defer utilruntime.HandleCrash()
	defer c.workqueue.ShutDown()

	if threadiness < 1 {
		return fmt.Errorf("invalid threadiness %d", threadiness)
	}

	if c.heartbeatInterval > 0 {
		klog.V(2).InfoS("Starting controller heartbeat stimulator", "interval", c.heartbeatInterval)
		go wait.Until(c.heartbeatStimulus, c.heartbeatInterval, stopCh)
	} else {
		klog.V(2).InfoS("Controller heartbeat is disabled")
	}

	klog.V(2).InfoS("Start workers")
	for i := 0; i < threadiness; i++ {
		go wait.Until(c.runWorker, time.Second, stopCh)
	}
	klog.V(2).InfoS("Workers running", "threadiness", threadiness)

	<-stopCh
	klog.V(2).InfoS("Workers stopped")
	return nil
}

func (c *Controller) runWorker() {
	for c.processNextWorkItem() {
	}
}

// processNextWorkItem reads a single work item off the workqueue and
// processes it by calling the syncHandler.
func (c *Controller) processNextWorkItem() bool {
	obj, shutdown := c.workqueue.Get()
	if shutdown {
		return false
	}

	numRequeues := c.workqueue.NumRequeues(obj)
	if numRequeues > 0 {
		klog.V(4).InfoS("Requeued report", "key", obj, "count", numRequeues)
	}

	err := func(obj interface{}) error {
		defer c.workqueue.Done(obj)
		key, ok := obj.(string)
		if !ok {
			c.workqueue.Forget(obj)
			utilruntime.HandleError(fmt.Errorf("expected string in workqueue but got %#v", obj))
			return nil
		}
		if key != heartbeatStimulusKey && c.isMaintenanceMode() {
			c.workqueue.Forget(obj)
			c.workqueue.AddAfter(obj, c.maintenanceModeRecheck)
			metrics.Results.Inc(metrics.ResultDeferred)
			klog.V(4).InfoS("Maintenance mode, deferring report", "key", key)
			return nil
		}
		pending := c.pendingFor(key)
		if err := c.syncHandler(key, pending); err != nil {
			if stewarderrors.IsRecoverable(err) && numRequeues < c.maxRetries {
				metrics.Results.Inc(metrics.ResultRetry)
				c.workqueue.AddRateLimited(obj)
				return fmt.Errorf("error ingesting '%s': %s, requeuing", key, err.Error())
			}
			c.workqueue.Forget(obj)
			c.remove(key, pending)
			metrics.Results.Inc(metrics.ResultDropped)
			return fmt.Errorf("error ingesting '%s': %s, giving up after %d retries", key, err.Error(), numRequeues)
		}
		c.workqueue.Forget(obj)
		klog.V(5).InfoS("Finished ingesting", "key", key)
		return nil
	}(obj)

	if err != nil {
		utilruntime.HandleError(err)
	}
	return true
}

func (c *Controller) isMaintenanceMode() bool {
	if c.maintenanceMode == nil {
		return false
	}
	enabled, err := c.maintenanceMode.IsMaintenanceMode(context.Background())
	if err != nil {
		utilruntime.HandleError(errors.Wrap(err, "failed to check maintenance mode"))
		return true
	}
	return enabled
}

func (c *Controller) heartbeatStimulus() {
	c.workqueue.Add(heartbeatStimulusKey)
}

func (c *Controller) heartbeat() {
	if c.heartbeatLogLevel != nil {
		klog.V(*c.heartbeatLogLevel).InfoS("heartbeat")
	}
	metrics.ControllerHeartbeats.Inc()
}

// syncHandler ingests the pending report queued under key.
// Reports replaced while being ingested stay pending.
func (c *Controller) syncHandler(key string, pending *pendingReport) error {
	if key == heartbeatStimulusKey {
		c.heartbeat()
		return nil
	}
	if pending == nil {
		return nil
	}

	build := pending.report.Build
	ctx := utils.NewLoggingContext(context.Background(), "ingest", "build", build.String())
	if err := c.ingest(ctx, pending.report); err != nil {
		return err
	}

	c.remove(key, pending)
	metrics.Results.Inc(metrics.ResultSuccess)
	metrics.Latency.Observe(c.clock.Since(pending.enqueued))
	return nil
}

func (c *Controller) ingest(ctx context.Context, report api.FingerprintReport) error {
	for _, fileName := range report.Record.FileNames() {
		if _, err := c.registry.Record(ctx, report.Record[fileName], fileName, report.Build); err != nil {
			return errors.Wrapf(err, "failed to register file %q", fileName)
		}
	}
	if err := c.records.AttachRecord(ctx, report.Build, report.Record); err != nil {
		return errors.Wrap(err, "failed to attach fingerprint record")
	}
	klog.FromContext(ctx).V(3).Info("Ingested fingerprint report", "files", len(report.Record))
	return nil
}

func (c *Controller) pendingFor(key string) *pendingReport {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	return c.pending[key]
}

func (c *Controller) remove(key string, pending *pendingReport) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	if pending != nil && c.pending[key] == pending {
		delete(c.pending, key)
	}
}
