package varre

import (
	"io/fs"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	lin "github.com/xlab/linmath"
)

const (
	mvpSize    = 64
	mvpBinding = 0
	// positions are tightly packed float3s
	vertexStride = 12
)

// MeshSimple draws one indexed mesh with a model-view-projection uniform and
// reversed-depth testing.
type MeshSimple struct {
	dev      gpu.Device
	vertex   *ShaderObject
	fragment *ShaderObject
	mesh     *GPUMesh
	uniform  *Buffer
	pool     gpu.DescriptorPool
	set      gpu.DescriptorSet
	layout   gpu.PipelineLayout
	camera   Camera
	mvp      lin.Mat4x4
}

func NewMeshSimple(dev gpu.Device, shaders fs.FS, mesh *assets.Mesh, camera Camera) (*MeshSimple, error) {
	m := &MeshSimple{dev: dev, camera: camera}
	if err := m.init(shaders, mesh); err != nil {
		m.Destroy(dev)
		return nil, err
	}
	return m, nil
}

func (m *MeshSimple) init(shaders fs.FS, mesh *assets.Mesh) (err error) {
	f := NewShaderFactory(m.dev)
	if m.vertex, err = loadShaderObject(f, shaders, assets.ShaderBasicModelVertex); err != nil {
		return err
	}
	if m.fragment, err = loadShaderObject(f, shaders, assets.ShaderBasicModelFragment); err != nil {
		return err
	}
	if len(m.vertex.Layouts) == 0 {
		return errors.Errorf("mesh: shader %s declares no descriptor sets", m.vertex.Name)
	}
	if m.mesh, err = NewGPUMesh(m.dev, mesh); err != nil {
		return err
	}
	if m.uniform, err = NewBuffer(m.dev, mvpSize, gpu.BufferUsageUniformBuffer, hostCoherent); err != nil {
		return errors.Wrap(err, "mesh: uniform buffer")
	}
	m.pool, err = m.dev.CreateDescriptorPool(1, []gpu.DescriptorPoolSize{
		{Type: gpu.DescriptorTypeUniformBuffer, Count: 1},
	})
	if err != nil {
		return errors.Wrap(err, "mesh: descriptor pool")
	}
	if m.set, err = m.dev.AllocateDescriptorSet(m.pool, m.vertex.Layouts[0]); err != nil {
		return errors.Wrap(err, "mesh: descriptor set")
	}
	m.dev.WriteBufferDescriptor(m.set, mvpBinding, gpu.DescriptorTypeUniformBuffer, m.uniform.Handle, 0, mvpSize)
	if m.layout, err = m.dev.CreatePipelineLayout(m.vertex.Layouts); err != nil {
		return errors.Wrap(err, "mesh: pipeline layout")
	}
	return m.OnSwapchainResized(gpu.Extent2D{Width: 1, Height: 1})
}

// OnSwapchainResized recomputes the projection for the new aspect ratio. The
// engine calls it after a device idle wait, so the uniform is not in use.
func (m *MeshSimple) OnSwapchainResized(extent gpu.Extent2D) error {
	m.mvp = m.camera.MVP(extent.Width, extent.Height)
	return errors.Wrap(m.uniform.Upload(matrixBytes(&m.mvp)), "mesh: upload mvp")
}

func (m *MeshSimple) RecordSetup(dev gpu.Device, cmd gpu.CommandBuffer) error {
	return m.mesh.RecordUpload(dev, cmd)
}

func (m *MeshSimple) FinishSetup(dev gpu.Device) {
	m.mesh.ReleaseStaging()
}

func (m *MeshSimple) RecordDraw(rec gpu.Recorder, cmd gpu.CommandBuffer, target FrameTarget) error {
	rec.CmdBeginRendering(cmd, target.Rendering(true))

	state := DefaultRenderState(target.Area).WithReversedDepth()
	state.VertexBindings = []gpu.VertexBinding{{Binding: 0, Stride: vertexStride, InputRate: gpu.VertexInputRateVertex}}
	state.VertexAttributes = []gpu.VertexAttribute{{Location: 0, Binding: 0, Format: gpu.FormatR32G32B32Sfloat}}
	state.Apply(rec, cmd)

	bindGraphicsShaders(rec, cmd, m.vertex, m.fragment)
	rec.CmdBindDescriptorSets(cmd, m.layout, 0, m.set)
	rec.CmdBindVertexBuffer(cmd, 0, m.mesh.Vertices.Handle, 0)
	rec.CmdBindIndexBuffer(cmd, m.mesh.Indices.Handle, 0, gpu.IndexTypeUint32)
	rec.CmdDrawIndexed(cmd, m.mesh.IndexCount, 1, 0, 0, 0)
	rec.CmdEndRendering(cmd)
	return nil
}

// Destroy releases everything the context created. It tolerates a partially
// initialized context.
func (m *MeshSimple) Destroy(dev gpu.Device) {
	if m.layout != 0 {
		dev.DestroyPipelineLayout(m.layout)
		m.layout = 0
	}
	if m.pool != 0 {
		dev.DestroyDescriptorPool(m.pool)
		m.pool, m.set = 0, 0
	}
	m.uniform.Destroy()
	if m.mesh != nil {
		m.mesh.Destroy()
		m.mesh = nil
	}
	m.vertex.Destroy(dev)
	m.fragment.Destroy(dev)
}
