package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dudu/facerestore/internal/app"
	"github.com/dudu/facerestore/internal/config"
	"github.com/dudu/facerestore/internal/inference"
	"github.com/dudu/facerestore/internal/logging"
	"github.com/dudu/facerestore/internal/pipeline"
	"github.com/dudu/facerestore/internal/restore"
	"github.com/dudu/facerestore/internal/selector"
	"github.com/dudu/facerestore/internal/ui"
)

func init() {
	// Lock the main goroutine to the main OS thread.
	// This is required on macOS for OpenCV's highgui (window creation).
	runtime.LockOSThread()
}

var (
	v          = viper.New()
	configPath string

	rootCmd = &cli.Command{
		Use:           "facerestore",
		Short:         "Restore faces in photos with GFPGAN-style ONNX models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	restoreCmd = &cli.Command{
		Use:   "restore [image]",
		Short: "Restore one image into results/restored_img.png",
		Example: "  facerestore restore old_photo.jpg\n" +
			"  facerestore restore scan.png --policy inpaint --show\n" +
			"  facerestore restore group.jpg --model codeformer --face CodeFormer.onnx",
		Args: cli.MaximumNArgs(1),
		RunE: runRestore,
	}

	modelsCmd = &cli.Command{
		Use:   "models",
		Short: "Model utilities",
	}

	inspectCmd = &cli.Command{
		Use:   "inspect <model.onnx>",
		Short: "Print a model's inputs, outputs and metadata",
		Args:  cli.ExactArgs(1),
		RunE:  runInspect,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("ort-library", "", "Path to the ONNX Runtime shared library")
	bind("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bind("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	bind("model.ort_library", rootCmd.PersistentFlags().Lookup("ort-library"))

	f := restoreCmd.Flags()
	f.StringP("policy", "p", "direct", "Pre-processing: direct or inpaint")
	f.Int("threshold", 240, "Damage mask threshold for the inpaint policy")
	f.IntP("upscale", "u", 2, "Output upscale factor")
	f.Float64P("weight", "w", 0.5, "Blend weight of the restored face")
	f.Bool("only-center-face", false, "Restore only the face nearest the center")
	f.StringP("model", "m", "gfpgan", "Face model: gfpgan, codeformer, gpen or stub")
	f.String("model-dir", "models", "Directory holding the ONNX models")
	f.String("face", "GFPGANv1.3.onnx", "Face restoration model file")
	f.String("detector", "det_10g.onnx", "SCRFD face detector model file")
	f.String("background", "", "Real-ESRGAN x4 model for the background (optional)")
	f.Bool("coreml", false, "Use the CoreML execution provider on macOS")
	f.StringP("output", "o", "results", "Output directory")
	f.String("naming", "fixed", "Output naming: fixed, input or unique")
	f.Bool("show", false, "Show input and result side by side until a key is pressed")

	bind("restore.policy", f.Lookup("policy"))
	bind("restore.threshold", f.Lookup("threshold"))
	bind("restore.upscale", f.Lookup("upscale"))
	bind("restore.weight", f.Lookup("weight"))
	bind("restore.only_center_face", f.Lookup("only-center-face"))
	bind("model.name", f.Lookup("model"))
	bind("model.dir", f.Lookup("model-dir"))
	bind("model.face", f.Lookup("face"))
	bind("model.detector", f.Lookup("detector"))
	bind("model.background", f.Lookup("background"))
	bind("model.coreml", f.Lookup("coreml"))
	bind("output.dir", f.Lookup("output"))
	bind("output.naming", f.Lookup("naming"))

	modelsCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(restoreCmd, modelsCmd)
}

func bind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates "nothing to do" from real failures
func exitCode(err error) int {
	if errors.Is(err, restore.ErrNoInputSelected) {
		return 2
	}
	return 1
}

func runRestore(cmd *cli.Command, args []string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	rt, err := pipeline.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	session := app.NewSession(selector.Static{Path: path}, rt, app.LogNotifier{Log: log}, log)
	if err := session.SelectImage(cmd.Context()); err != nil {
		return err
	}

	result, err := session.RestoreImage(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.OutputPath)

	show, _ := cmd.Flags().GetBool("show")
	if show {
		return showComparison(result)
	}
	return nil
}

func showComparison(result *restore.Result) error {
	window := ui.NewWindow("facerestore")
	defer window.Close()

	if err := window.ShowComparison(result.InputPreview, result.RestoredPreview); err != nil {
		return err
	}
	window.WaitKey(0)
	return nil
}

func runInspect(cmd *cli.Command, args []string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	modelPath := args[0]
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("model not found: %w", err)
	}

	if err := inference.Initialize(inference.Options{LibraryPath: cfg.Model.OrtLibrary, Log: log}); err != nil {
		return err
	}
	defer inference.Shutdown()

	info, err := inference.Describe(modelPath)
	if err != nil {
		return err
	}
	info.Write(cmd.OutOrStdout())
	return nil
}
