package vulkan

// ListDevices creates a short-lived instance and reports every physical
// device with the reasons it cannot run the engine, if any.
func ListDevices(opts Options) ([]DeviceReport, error) {
	c := &Context{log: opts.logger()}
	defer c.Destroy()
	if err := c.initInstance(opts); err != nil {
		return nil, err
	}
	devices, err := physicalDevices(c.instance)
	if err != nil {
		return nil, err
	}
	exts := deviceExtensionSet(opts.Display != nil)
	reports := make([]DeviceReport, 0, len(devices))
	for i, pd := range devices {
		reports = append(reports, probeDevice(&c.instTable, i, pd, exts))
	}
	return reports, nil
}
