package main

import (
	"fmt"
	"strings"

	"github.com/andewx/varre"
	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/vulkan"
	"github.com/xlab/tablewriter"
	"golang.org/x/exp/slog"
)

// printDevices lists every physical device without creating a window.
func printDevices(cfg varre.Config, log *slog.Logger) error {
	reports, err := vulkan.ListDevices(vulkan.Options{
		AppName:    cfg.AppName,
		Validation: cfg.Validation,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	fmt.Println(devicesTable(reports))
	return nil
}

func devicesTable(reports []vulkan.DeviceReport) string {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("VULKAN PHYSICAL DEVICES")
	if len(reports) == 0 {
		table.AddRow("No devices", "")
		return table.Render()
	}
	for i, r := range reports {
		if i > 0 {
			table.AddSeparator()
		}
		p := r.Properties
		table.AddRow("Device", fmt.Sprintf("#%d %s", r.Index, p.Name))
		table.AddRow("Type", p.Type.String())
		table.AddRow("API Version", versionString(p.APIVersion))
		table.AddRow("Driver Version", fmt.Sprintf("%#x", p.DriverVersion))
		table.AddRow("Vendor / Device", fmt.Sprintf("%04x / %04x", p.VendorID, p.DeviceID))
		table.AddRow("Queue families", familiesString(r.Families))
		table.AddRow("Shader objects", yesNo(r.Suitable))
		if len(r.Missing) > 0 {
			table.AddRow("Missing", strings.Join(r.Missing, ", "))
		}
		table.AddRow("Unified layouts", yesNo(r.UnifiedLayouts))
	}
	return table.Render()
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

func familiesString(families []gpu.QueueFamily) string {
	parts := make([]string, 0, len(families))
	for i, f := range families {
		var caps []string
		if f.Flags&gpu.QueueGraphics != 0 {
			caps = append(caps, "G")
		}
		if f.Flags&gpu.QueueCompute != 0 {
			caps = append(caps, "C")
		}
		if f.Flags&gpu.QueueTransfer != 0 {
			caps = append(caps, "T")
		}
		parts = append(parts, fmt.Sprintf("%d:%s x%d", i, strings.Join(caps, ""), f.Count))
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
