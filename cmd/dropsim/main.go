package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/akmonengine/tumble"
	"github.com/akmonengine/tumble/actor"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

type config struct {
	Steps       int           `cli:""        env:"DROPSIM_STEPS"        help:"Number of simulation steps."`
	Step        time.Duration `cli:""        env:"DROPSIM_STEP"         help:"Simulated duration of a step."`
	Spheres     int           `cli:""        env:"DROPSIM_SPHERES"      help:"Number of spheres dropped on the ground."`
	Height      int           `cli:""        env:"DROPSIM_HEIGHT"       help:"Height of the simulated region in meters."`
	Cells       int           `cli:""        env:"DROPSIM_CELLS"        help:"Number of horizontal bands of the region."`
	LogLevel    string        `cli:""        env:"DROPSIM_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool          `cli:""        env:"DROPSIM_LOG_INDENT"   help:"Indent logs."`
	MetricsAddr string        `cli:""        env:"DROPSIM_METRICS_ADDR" help:"Listening address for Prometheus metrics, empty to disable."`
	Linger      bool          `cli:",hidden" env:"DROPSIM_LINGER"       help:"Keep serving metrics after the simulation until interrupted."`
}

// marker stands in for a drawn object
type marker struct {
	name     string
	position mgl64.Vec3
}

func (m *marker) Position() mgl64.Vec3 {
	return m.position
}

func (m *marker) SetTranslation(position mgl64.Vec3) {
	m.position = position
}

func main() {
	conf := config{
		Steps:    600,
		Step:     time.Second / 60,
		Spheres:  8,
		Height:   20,
		Cells:    8,
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Drops spheres on a ground plane and a box, then prints the final state.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	partitioner, err := tumble.NewSpacePartitioner(tumble.PartitionConfig{
		Min:     mgl64.Vec3{-10, -1, -10},
		Max:     mgl64.Vec3{10, float64(conf.Height), 10},
		Cells:   conf.Cells,
		Gravity: tumble.DEFAULT_GRAVITY,
	})
	if err != nil {
		logs.Fatal(errors.New("creating partitioner failed").Wrap(err))
	}

	world := partitioner.World()
	world.Events.Subscribe(tumble.COLLISION_ENTER, func(event tumble.Event) {
		enter := event.(tumble.CollisionEnterEvent)
		logs.WithTag("world_id", world.ID).
			WithTag("body_a", enter.BodyA).
			WithTag("body_b", enter.BodyB).
			WithTag("pair", enter.Kind).
			Debug("collision enter")
	})
	world.Events.Subscribe(tumble.ON_SETTLE, func(event tumble.Event) {
		logs.WithTag("world_id", world.ID).
			WithTag("handle", event.(tumble.SettleEvent).Body).
			Info("body came to rest")
	})

	populate(partitioner, conf)

	if conf.MetricsAddr != "" {
		server := &http.Server{Addr: conf.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logs.Warn(errors.New("serving metrics failed").Wrap(err))
			}
		}()
		defer server.Close()
	}

	logs.WithTag("world_id", world.ID).
		WithTag("steps", conf.Steps).
		WithTag("step", conf.Step).
		WithTag("bodies", world.Len()).
		Info("starting simulation")

	start := time.Now()
	steps := run(ctx, partitioner, conf)

	snapshot, err := tumble.MarshalSnapshot(world.Snapshot())
	if err != nil {
		logs.Fatal(err)
	}

	bounds, _ := world.Bounds()
	logs.WithTag("world_id", world.ID).
		WithTag("steps", steps).
		WithTag("elapsed", time.Since(start)).
		WithTag("bounds_min", bounds.Min).
		WithTag("bounds_max", bounds.Max).
		WithTag("snapshot", json.RawMessage(snapshot)).
		Info("simulation done")

	if conf.Linger && conf.MetricsAddr != "" {
		<-ctx.Done()
	}
}

func validateConfig(conf config) error {
	switch {
	case conf.Steps < 0:
		return errors.New("invalid step count").WithTag("steps", conf.Steps)
	case conf.Step <= 0:
		return errors.New("invalid step duration").WithTag("step", conf.Step)
	case conf.Spheres < 0:
		return errors.New("invalid sphere count").WithTag("spheres", conf.Spheres)
	default:
		return nil
	}
}

// populate lays out a ground plane, a tilted crate and a column of spheres above them
func populate(partitioner *tumble.SpacePartitioner, conf config) {
	ground := actor.NewRigidBody(actor.NewTransform(), actor.NewPlane(mgl64.Vec3{0, 1, 0}), actor.BodyTypeStatic, 0)
	partitioner.Insert(&marker{name: "ground"}, ground, mgl64.Vec3{})

	crateTransform := actor.TransformAt(
		mgl64.Vec3{1.5, 0.5, 0},
		mgl64.QuatRotate(mgl64.DegToRad(30), mgl64.Vec3{0, 1, 0}),
	)
	crate := actor.NewRigidBody(crateTransform, &actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, actor.BodyTypeStatic, 0)
	partitioner.Insert(&marker{name: "crate", position: crateTransform.Position}, crate, mgl64.Vec3{})

	for i := range conf.Spheres {
		position := mgl64.Vec3{
			float64(i%3) * 0.9,
			2 + float64(i)*1.5,
			float64(i%2) * 0.3,
		}
		sphere := actor.NewRigidBody(
			actor.TransformAt(position, mgl64.QuatIdent()),
			&actor.Sphere{Radius: 0.25},
			actor.BodyTypeDynamic,
			1+float64(i%3),
		)
		partitioner.Insert(&marker{name: "sphere", position: position}, sphere, mgl64.Vec3{0, 0.25, 0})
	}

	// scenery without a body stays where it is put
	partitioner.Insert(&marker{name: "flag", position: mgl64.Vec3{-3, 0, -3}}, nil, mgl64.Vec3{})
}

// run steps the simulation until done or interrupted and returns the steps taken
func run(ctx context.Context, partitioner *tumble.SpacePartitioner, conf config) int {
	for step := range conf.Steps {
		select {
		case <-ctx.Done():
			logs.WithTag("world_id", partitioner.World().ID).
				WithTag("step", step).
				Info("simulation interrupted")
			return step
		default:
		}

		partitioner.Update(conf.Step.Seconds())
	}

	return conf.Steps
}
