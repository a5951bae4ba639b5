package varre

import (
	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

const hostCoherent = gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent

// GPUMesh holds a mesh in device-local vertex and index buffers. The staging
// copies live until ReleaseStaging.
type GPUMesh struct {
	Vertices   *Buffer
	Indices    *Buffer
	IndexCount uint32

	vertexStaging *Buffer
	indexStaging  *Buffer
}

// NewGPUMesh creates the staging and device-local buffers and fills the staging
// side. Call RecordUpload in a setup command buffer before drawing.
func NewGPUMesh(dev gpu.Device, mesh *assets.Mesh) (*GPUMesh, error) {
	if mesh == nil || len(mesh.Positions) == 0 || len(mesh.Indices) == 0 {
		return nil, ErrEmptyMesh
	}
	vertexData := mesh.VertexBytes()
	indexData := mesh.IndexBytes()
	m := &GPUMesh{IndexCount: uint32(len(mesh.Indices))}
	if err := m.create(dev, vertexData, indexData); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

func (m *GPUMesh) create(dev gpu.Device, vertexData, indexData []byte) (err error) {
	if m.vertexStaging, err = NewBuffer(dev, uint64(len(vertexData)), gpu.BufferUsageTransferSrc, hostCoherent); err != nil {
		return errors.Wrap(err, "vertex staging")
	}
	if m.indexStaging, err = NewBuffer(dev, uint64(len(indexData)), gpu.BufferUsageTransferSrc, hostCoherent); err != nil {
		return errors.Wrap(err, "index staging")
	}
	if m.Vertices, err = NewBuffer(dev, uint64(len(vertexData)),
		gpu.BufferUsageTransferDst|gpu.BufferUsageVertexBuffer, gpu.MemoryPropertyDeviceLocal); err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	if m.Indices, err = NewBuffer(dev, uint64(len(indexData)),
		gpu.BufferUsageTransferDst|gpu.BufferUsageIndexBuffer, gpu.MemoryPropertyDeviceLocal); err != nil {
		return errors.Wrap(err, "index buffer")
	}
	if err = m.vertexStaging.Upload(vertexData); err != nil {
		return err
	}
	return m.indexStaging.Upload(indexData)
}

// RecordUpload records the staging to device-local copies and makes them
// visible to vertex input.
func (m *GPUMesh) RecordUpload(rec gpu.Recorder, cmd gpu.CommandBuffer) error {
	if m.vertexStaging == nil || m.indexStaging == nil {
		return errors.New("mesh upload: staging already released")
	}
	rec.CmdCopyBuffer(cmd, m.vertexStaging.Handle, m.Vertices.Handle, m.vertexStaging.Size)
	rec.CmdCopyBuffer(cmd, m.indexStaging.Handle, m.Indices.Handle, m.indexStaging.Size)
	rec.CmdBufferBarrier(cmd,
		gpu.BufferBarrier{
			Buffer:    m.Vertices.Handle,
			SrcStage:  gpu.PipelineStageTransfer,
			SrcAccess: gpu.AccessTransferWrite,
			DstStage:  gpu.PipelineStageVertexInput,
			DstAccess: gpu.AccessVertexAttributeRead,
		},
		gpu.BufferBarrier{
			Buffer:    m.Indices.Handle,
			SrcStage:  gpu.PipelineStageTransfer,
			SrcAccess: gpu.AccessTransferWrite,
			DstStage:  gpu.PipelineStageVertexInput,
			DstAccess: gpu.AccessIndexRead,
		},
	)
	return nil
}

// ReleaseStaging frees the staging buffers once the upload has completed.
func (m *GPUMesh) ReleaseStaging() {
	m.vertexStaging.Destroy()
	m.indexStaging.Destroy()
	m.vertexStaging, m.indexStaging = nil, nil
}

func (m *GPUMesh) Destroy() {
	m.ReleaseStaging()
	m.Vertices.Destroy()
	m.Indices.Destroy()
}
