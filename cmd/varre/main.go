// Command varre opens a window and renders one of the built-in render
// contexts until the window is closed.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/andewx/varre"
	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/vulkan"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/xlab/closer"
	"golang.org/x/exp/slog"
)

const (
	initialWidth  = 1280
	initialHeight = 720
)

func init() {
	// glfw and the presentation engine must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	var (
		listDevices = flag.Bool("devices", false, "list physical devices and exit")
		contextName = flag.String("context", "triangle", "render context: triangle or mesh")
		meshPath    = flag.String("mesh", "", "mesh file for the mesh context; the built-in cube when empty")
		shaderDir   = flag.String("shaders", "", "directory of .spv files replacing the compiled-in shaders (overrides "+varre.EnvShaderDir+")")
		validation  = flag.Bool("validation", false, "enable the validation layer")
		logFile     = flag.String("log", "", "append log records to this file")
	)
	flag.Parse()

	cfg, err := varre.DefaultConfig().FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *shaderDir != "" {
		cfg.ShaderDir = *shaderDir
	}
	cfg.Validation = cfg.Validation || *validation
	cfg.LogFile = *logFile

	log, logCloser, err := varre.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	closer.Bind(func() { logCloser.Close() })

	if *listDevices {
		if err := printDevices(cfg, log); err != nil {
			log.Error("list devices", slog.String("error", err.Error()))
			closer.Exit(1)
		}
		closer.Close()
		return
	}

	kind, err := varre.ParseRenderContextKind(*contextName)
	if err != nil {
		log.Error("bad flag", slog.String("error", err.Error()))
		closer.Exit(2)
	}
	if err := run(cfg, log, kind, *meshPath); err != nil {
		log.Error("varre stopped", slog.String("error", fmt.Sprintf("%+v", err)))
		closer.Exit(1)
	}
	closer.Close()
}

func run(cfg varre.Config, log *slog.Logger, kind varre.RenderContextKind, meshPath string) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw init")
	}
	closer.Bind(glfw.Terminate)

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(initialWidth, initialHeight, cfg.AppName, nil, nil)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	closer.Bind(window.Destroy)

	dev, err := vulkan.NewContext(vulkan.Options{
		AppName:    cfg.AppName,
		Validation: cfg.Validation,
		Display:    window,
		ProcAddr:   glfw.GetVulkanGetInstanceProcAddress(),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	engine, err := varre.NewEngine(dev, cfg, log)
	if err != nil {
		dev.Destroy()
		return err
	}
	// bound last so it runs before the window and glfw are torn down
	closer.Bind(engine.Destroy)

	width, height := window.GetFramebufferSize()
	if err := engine.Attach(window, uint32(width), uint32(height)); err != nil {
		return err
	}
	var src varre.RenderSources
	if cfg.ShaderDir != "" {
		src.Shaders = os.DirFS(cfg.ShaderDir)
	}
	if meshPath != "" {
		if src.Mesh, err = loadMesh(meshPath); err != nil {
			return err
		}
	}
	rc, err := varre.NewRenderContext(kind, dev, src)
	if err != nil {
		return err
	}
	if err := engine.SetRenderContext(rc); err != nil {
		return err
	}

	resized := false
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		resized = true
	})
	for !window.ShouldClose() {
		glfw.PollEvents()
		width, height = window.GetFramebufferSize()
		if width == 0 || height == 0 {
			// minimized; nothing can be presented
			glfw.WaitEvents()
			continue
		}
		if resized {
			resized = false
			if err := engine.Resize(uint32(width), uint32(height)); err != nil {
				return err
			}
		}
		err := engine.Draw()
		if errors.Is(err, varre.ErrSwapchainOutOfDate) {
			resized = true
			continue
		}
		if err != nil {
			return err
		}
	}
	log.Info("window closed", slog.Uint64("frames", engine.Stats().Frames))
	return nil
}

func loadMesh(path string) (*assets.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read mesh")
	}
	mesh, err := assets.DecodeMesh(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode mesh %s", path)
	}
	return mesh, nil
}
