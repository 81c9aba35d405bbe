// Package main provides the VarQ ML Framework CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/varq-ml/varq/autodiff"
	"github.com/varq-ml/varq/device/simulator"
	"github.com/varq-ml/varq/execute"
	"github.com/varq-ml/varq/gradients"
	"github.com/varq-ml/varq/optim"
	"github.com/varq-ml/varq/tape"
)

const version = "v0.1.0-dev"

var (
	wires      = flag.Int("wires", 2, "Number of simulator wires")
	steps      = flag.Int("steps", 100, "Number of optimization steps")
	lr         = flag.Float64("lr", 0.1, "Learning rate")
	optName    = flag.String("optimizer", "adam", "Optimizer (sgd, adam)")
	gradMethod = flag.String("gradient", "paramshift", "Gradient method (paramshift, finitediff, adjoint)")
	forward    = flag.Bool("forward", false, "Compute device Jacobians in the forward pass (adjoint only)")
	enableOTel = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("VarQ ML Framework %s\n", version)
		return
	}

	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}

	if err := run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}
}

// run minimizes <Z0> = cos(theta0)cos(theta1) over a two-parameter
// rotation circuit. The exact minimum is -1, reached when the product of
// cosines equals -1.
func run(ctx context.Context) error {
	dev := simulator.New(*wires)

	grad, mode, err := gradientConfig()
	if err != nil {
		return err
	}

	var opt optim.Optimizer
	switch *optName {
	case "sgd":
		opt = optim.NewSGD(optim.SGDConfig{LR: *lr, Momentum: 0.9})
	case "adam":
		opt = optim.NewAdam(optim.AdamConfig{LR: *lr})
	default:
		return fmt.Errorf("unknown optimizer %q", *optName)
	}

	log.Info().
		Str("device", dev.Name()).
		Str("gradient", *gradMethod).
		Str("optimizer", *optName).
		Float64("lr", opt.LR()).
		Msg("Starting variational optimization")

	params := []float64{0.011, 0.012}
	start := time.Now()

	for step := 0; step < *steps; step++ {
		cost, gradVals, err := costAndGradient(ctx, dev, grad, mode, params)
		if err != nil {
			return err
		}
		if err := opt.Step(params, gradVals); err != nil {
			return err
		}
		if step%10 == 0 || step == *steps-1 {
			log.Info().
				Int("step", step).
				Float64("cost", cost).
				Floats64("params", params).
				Msg("Optimization progress")
		}
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("circuit_executions", dev.Executions()).
		Floats64("params", params).
		Float64("final_cost", math.Cos(params[0])*math.Cos(params[1])).
		Msg("Optimization complete")
	return nil
}

func gradientConfig() (execute.Gradient, execute.Mode, error) {
	switch *gradMethod {
	case "paramshift":
		return execute.Gradient{Kind: execute.KindTransform, Transform: gradients.ParamShift}, execute.ModeBackward, nil
	case "finitediff":
		return execute.Gradient{Kind: execute.KindTransform, Transform: gradients.FiniteDiff(0)}, execute.ModeBackward, nil
	case "adjoint":
		mode := execute.ModeBackward
		if *forward {
			mode = execute.ModeForward
		}
		return execute.Gradient{Kind: execute.KindDevice}, mode, nil
	default:
		return execute.Gradient{}, 0, fmt.Errorf("unknown gradient method %q", *gradMethod)
	}
}

// costAndGradient executes one circuit evaluation and differentiates the
// scalar cost with respect to the parameter vector.
func costAndGradient(ctx context.Context, dev *simulator.Simulator, grad execute.Gradient, mode execute.Mode, params []float64) (float64, []float64, error) {
	theta0 := autodiff.Scalar(params[0])
	theta1 := autodiff.Scalar(params[1])

	t := tape.New(
		[]tape.Operation{
			{Name: "RX", Wires: []int{0}, Params: []tape.Number{theta0}},
			{Name: "RY", Wires: []int{0}, Params: []tape.Number{theta1}},
			{Name: "CNOT", Wires: []int{0, 1}},
		},
		[]tape.Measurement{
			{Kind: tape.Expval, Observable: tape.PauliZ(0)},
		},
	)

	out, err := execute.Execute(ctx, []*tape.Tape{t}, dev, grad, execute.Options{Mode: mode})
	if err != nil {
		return 0, nil, err
	}

	cost := out[0]
	gradVals, err := autodiff.Grad(cost, []*autodiff.Value{theta0, theta1})
	if err != nil {
		return 0, nil, err
	}
	return cost.Unbox(), []float64{gradVals[0].Unbox(), gradVals[1].Unbox()}, nil
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("varq"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
