package camera

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Mode is a steady camera viewing mode.
type Mode int

const (
	BehindCar Mode = iota
	TopView
)

func (m Mode) String() string {
	switch m {
	case BehindCar:
		return "behind_car"
	case TopView:
		return "top_view"
	}

	return "unknown"
}

// Other returns the mode a toggle switches to.
func (m Mode) Other() Mode {
	if m == BehindCar {
		return TopView
	}

	return BehindCar
}

// Config holds the camera placement tunables. Distances are in metres.
type Config struct {
	FollowDistance     float64
	FollowHeight       float64
	LookAhead          float64
	LookHeight         float64
	Smoothing          float64
	TopHeight          float64
	TopLookAhead       float64
	TransitionDuration time.Duration
	Aspect             float64
}

func DefaultConfig() Config {
	return Config{
		FollowDistance:     6,
		FollowHeight:       2.5,
		LookAhead:          2,
		LookHeight:         0.5,
		Smoothing:          0.1,
		TopHeight:          30,
		TopLookAhead:       0.1,
		TransitionDuration: 500 * time.Millisecond,
		Aspect:             16.0 / 9.0,
	}
}

// Pose is a camera position and the point it looks at.
type Pose struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

func (p Pose) lerp(to Pose, t float64) Pose {
	return Pose{
		Position: p.Position.Add(to.Position.Sub(p.Position).Mul(t)),
		Target:   p.Target.Add(to.Target.Sub(p.Target).Mul(t)),
	}
}

// Rig is the scene camera the controller drives.
type Rig interface {
	SetPosition(position mgl64.Vec3)
	LookAt(target mgl64.Vec3)
	SetAspect(aspect float64)
}

// State reports the controller's mode machine.
type State struct {
	Mode          Mode
	Transitioning bool
	From          Mode
	To            Mode
	Progress      float64
}

// Controller places the camera behind or above the vehicle and blends between
// the two modes over a fixed duration.
type Controller struct {
	cfg           Config
	rig           Rig
	now           func() time.Time
	mode          Mode
	transitioning bool
	from          Mode
	to            Mode
	progress      float64
	lastToggle    time.Time
	toggled       bool
	pose          Pose
	placed        bool
}

// Option configures a Controller.
type Option func(c *Controller)

// WithClock replaces the wall clock used to debounce toggles.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New builds a controller in BehindCar mode. A non-positive transition
// duration falls back to the default so blends always finish.
func New(cfg Config, rig Rig, opts ...Option) *Controller {
	if cfg.TransitionDuration <= 0 {
		cfg.TransitionDuration = DefaultConfig().TransitionDuration
	}

	controller := &Controller{
		cfg:  cfg,
		rig:  rig,
		now:  time.Now,
		mode: BehindCar,
	}

	for _, opt := range opts {
		opt(controller)
	}

	if rig != nil {
		rig.SetAspect(cfg.Aspect)
	}

	return controller
}

// Toggle starts a transition to the other mode. It is ignored while a
// transition is running or when the previous accepted toggle was less than
// one transition duration ago.
func (c *Controller) Toggle() bool {
	now := c.now()

	if c.transitioning {
		return false
	}

	if c.toggled && now.Sub(c.lastToggle) < c.cfg.TransitionDuration {
		return false
	}

	c.transitioning = true
	c.from = c.mode
	c.to = c.mode.Other()
	c.progress = 0
	c.lastToggle = now
	c.toggled = true

	return true
}

// Resize updates the rig's aspect ratio from viewport dimensions.
func (c *Controller) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.cfg.Aspect = float64(width) / float64(height)

	if c.rig != nil {
		c.rig.SetAspect(c.cfg.Aspect)
	}
}

// Update moves the camera for one frame given the vehicle position and yaw.
func (c *Controller) Update(position mgl64.Vec3, yaw, dt float64) Pose {
	switch {
	case c.transitioning:
		c.progress = math.Min(1, c.progress+dt/c.cfg.TransitionDuration.Seconds())
		c.pose = c.modePose(c.from, position, yaw).lerp(c.modePose(c.to, position, yaw), c.progress)

		if c.progress >= 1 {
			c.transitioning = false
			c.mode = c.to
		}
	case c.mode == TopView:
		c.pose = c.TopViewPose(position, yaw)
	default:
		want := c.BehindCarPose(position, yaw)
		if !c.placed {
			c.pose = want
		} else {
			c.pose = c.pose.lerp(want, c.cfg.Smoothing)
		}
	}

	c.placed = true

	if c.rig != nil {
		c.rig.SetPosition(c.pose.Position)
		c.rig.LookAt(c.pose.Target)
	}

	return c.pose
}

// State returns a copy of the mode machine.
func (c *Controller) State() State {
	return State{
		Mode:          c.mode,
		Transitioning: c.transitioning,
		From:          c.from,
		To:            c.to,
		Progress:      c.progress,
	}
}

// Pose returns the pose written on the last Update.
func (c *Controller) Pose() Pose {
	return c.pose
}

// BehindCarPose is the unsmoothed chase pose behind and above the vehicle.
func (c *Controller) BehindCarPose(position mgl64.Vec3, yaw float64) Pose {
	forward := heading(yaw)

	return Pose{
		Position: position.Sub(forward.Mul(c.cfg.FollowDistance)).Add(mgl64.Vec3{0, c.cfg.FollowHeight, 0}),
		Target:   position.Add(forward.Mul(c.cfg.LookAhead)).Add(mgl64.Vec3{0, c.cfg.LookHeight, 0}),
	}
}

// TopViewPose is the rigid overhead pose looking at the ground ahead of the vehicle.
func (c *Controller) TopViewPose(position mgl64.Vec3, yaw float64) Pose {
	ahead := position.Add(heading(yaw).Mul(c.cfg.TopLookAhead))

	return Pose{
		Position: mgl64.Vec3{position.X(), position.Y() + c.cfg.TopHeight, position.Z()},
		Target:   mgl64.Vec3{ahead.X(), 0, ahead.Z()},
	}
}

func (c *Controller) modePose(mode Mode, position mgl64.Vec3, yaw float64) Pose {
	if mode == TopView {
		return c.TopViewPose(position, yaw)
	}

	return c.BehindCarPose(position, yaw)
}

func heading(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{-math.Sin(yaw), 0, -math.Cos(yaw)}
}

// Camera is an in-memory Rig.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Aspect   float64
}

func (c *Camera) SetPosition(position mgl64.Vec3) {
	c.Position = position
}

func (c *Camera) LookAt(target mgl64.Vec3) {
	c.Target = target
}

func (c *Camera) SetAspect(aspect float64) {
	c.Aspect = aspect
}
