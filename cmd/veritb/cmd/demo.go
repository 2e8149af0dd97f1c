package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/runner"
	"github.com/veritb/veritb/scheduler"
	"github.com/veritb/veritb/vtime"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in sample regression against the reference kernel.",
	Long: `The demo regression verifies a small behavioral counter. A model ` +
		`task drives the counter from the clock, while the tests check ` +
		`counting and synchronous reset.`,
	Run: func(cmd *cobra.Command, args []string) {
		runDemo(cmd)
	},
}

func init() {
	demoCmd.Flags().String("precision", defaultPrecision(),
		"kernel step resolution (fs, ps, ns, us, ms, sec)")
	demoCmd.Flags().Bool("log-tasks", false,
		"print task transitions and trigger firings")
	demoCmd.Flags().String("record", os.Getenv("VERITB_RECORDING"),
		"record task and trigger events into a SQLite file at this path")
	demoCmd.Flags().Bool("monitor", false,
		"start the monitoring web server")
	demoCmd.Flags().Int("monitor-port", 0,
		"port number for the monitoring server")

	rootCmd.AddCommand(demoCmd)
}

func defaultPrecision() string {
	if p := os.Getenv("VERITB_PRECISION"); p != "" {
		return p
	}
	return "ps"
}

func runDemo(cmd *cobra.Command) {
	precisionName, _ := cmd.Flags().GetString("precision")
	precision, err := vtime.ParseUnit(precisionName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid precision %q: %v\n",
			precisionName, err)
		os.Exit(1)
	}

	reg := runner.NewRegistry()
	reg.Register("count_to_ten", countToTenTest)
	reg.Register("synchronous_reset", synchronousResetTest)

	b := runner.MakeBuilder().
		WithPrecision(precision).
		WithDUT(defineCounter).
		WithRegistry(reg)

	if on, _ := cmd.Flags().GetBool("log-tasks"); on {
		b = b.WithTaskLogging()
	}
	if path, _ := cmd.Flags().GetString("record"); path != "" {
		b = b.WithRecording(path)
	}
	if on, _ := cmd.Flags().GetBool("monitor"); on {
		b = b.WithMonitoring()
		if port, _ := cmd.Flags().GetInt("monitor-port"); port > 0 {
			b = b.WithMonitorPort(port)
		}
	}

	results := b.Build().Run()
	runner.ReportAndExit(results)
}

func defineCounter(k *kernel.EventKernel) error {
	if _, err := k.DefineSignal("dut.clk", 1); err != nil {
		return err
	}
	if _, err := k.DefineSignal("dut.rst", 1); err != nil {
		return err
	}
	if _, err := k.DefineSignal("dut.count", 8); err != nil {
		return err
	}
	return nil
}

// counterModel behaves like a synchronous counter with active-high reset:
// on every rising clock edge, count goes to zero when rst is high and
// increments otherwise.
func counterModel(ctx *scheduler.Context) error {
	clk, err := ctx.Resolve("dut.clk")
	if err != nil {
		return err
	}
	rst, err := ctx.Resolve("dut.rst")
	if err != nil {
		return err
	}
	count, err := ctx.Resolve("dut.count")
	if err != nil {
		return err
	}

	for {
		if _, err := ctx.Await(scheduler.Rising(clk)); err != nil {
			return err
		}

		resetting, err := ctx.Read(rst)
		if err != nil {
			return err
		}

		if resetting != 0 {
			ctx.Set(count, 0)
			continue
		}

		current, err := ctx.Read(count)
		if err != nil {
			return err
		}
		ctx.Set(count, current+1)
	}
}

func startCounter(ctx *scheduler.Context) (*scheduler.Handle, error) {
	clk, err := ctx.Resolve("dut.clk")
	if err != nil {
		return nil, err
	}

	ctx.Spawn("counter_model", counterModel)
	ctx.Spawn("clk_gen", scheduler.Clock(clk, 10, vtime.Ns))

	return clk, nil
}

func countToTenTest(ctx *scheduler.Context) error {
	clk, err := startCounter(ctx)
	if err != nil {
		return err
	}
	count, err := ctx.Resolve("dut.count")
	if err != nil {
		return err
	}

	for i := 0; i < 10; i++ {
		if _, err := ctx.Await(scheduler.Falling(clk)); err != nil {
			return err
		}
	}

	value, err := ctx.Read(count)
	if err != nil {
		return err
	}
	if value != 10 {
		return fmt.Errorf("expected count 10, got %d", value)
	}

	return nil
}

func synchronousResetTest(ctx *scheduler.Context) error {
	clk, err := startCounter(ctx)
	if err != nil {
		return err
	}
	rst, err := ctx.Resolve("dut.rst")
	if err != nil {
		return err
	}
	count, err := ctx.Resolve("dut.count")
	if err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		if _, err := ctx.Await(scheduler.Falling(clk)); err != nil {
			return err
		}
	}

	ctx.Set(rst, 1)
	if _, err := ctx.Await(scheduler.Falling(clk)); err != nil {
		return err
	}

	value, err := ctx.Read(count)
	if err != nil {
		return err
	}
	if value != 0 {
		return fmt.Errorf("expected count 0 after reset, got %d", value)
	}

	return nil
}
