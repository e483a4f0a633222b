// Package renderer draws a viewer scene into an offscreen framebuffer.
// Each viewer instance owns one GL renderer; the shell composites the
// resulting color textures into its window.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/engine/camera"
	"github.com/openairframe/stlview/internal/engine/scene"
	"github.com/openairframe/stlview/internal/engine/shader"
	"github.com/openairframe/stlview/internal/logger"
)

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec3 vWorldPos;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vWorldPos = vec3(uModel * vec4(aPosition, 1.0));
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
` + "\x00"

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec3 vWorldPos;

uniform vec3 uBaseColor;
uniform float uMetalness;
uniform float uRoughness;
uniform vec3 uCameraPos;

uniform vec3 uHemiSky;
uniform vec3 uHemiGround;
uniform float uHemiIntensity;
uniform vec3 uLightDir;
uniform vec3 uLightColor;
uniform float uLightIntensity;

out vec4 FragColor;

void main() {
    vec3 n = normalize(vNormal);
    vec3 l = normalize(uLightDir);
    vec3 v = normalize(uCameraPos - vWorldPos);
    vec3 h = normalize(l + v);

    vec3 hemi = mix(uHemiGround, uHemiSky, n.y * 0.5 + 0.5) * uHemiIntensity;
    float diff = max(dot(n, l), 0.0);

    float shininess = mix(4.0, 128.0, (1.0 - uRoughness) * (1.0 - uRoughness));
    float spec = pow(max(dot(n, h), 0.0), shininess) * (1.0 - uRoughness);
    vec3 specColor = mix(vec3(0.04), uBaseColor, uMetalness);

    vec3 color = uBaseColor * (hemi + diff * uLightColor * uLightIntensity)
               + specColor * spec * uLightIntensity;
    FragColor = vec4(color, 1.0);
}
` + "\x00"

const gridVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aColor;

uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vColor;

void main() {
    vColor = aColor;
    gl_Position = uProjection * uView * vec4(aPosition, 1.0);
}
` + "\x00"

const gridFragmentShader = `#version 410 core
in vec3 vColor;
out vec4 FragColor;

void main() {
    FragColor = vec4(vColor, 1.0);
}
` + "\x00"

// GL renders one instance's scene into an offscreen framebuffer.
type GL struct {
	width      int32 // logical panel size
	height     int32
	pixelRatio float32

	fbo          uint32
	colorTexture uint32
	depthRBO     uint32

	meshProg uint32
	gridProg uint32

	meshVAO    uint32
	meshVBO    uint32
	meshEBO    uint32
	indexCount int32

	gridVAO       uint32
	gridVBO       uint32
	gridVertCount int32
}

// New creates a renderer sized to the panel content box. pixelRatio is
// clamped to at most 2 to bound GPU cost on high-density displays.
func New(width, height int, pixelRatio float64) (*GL, error) {
	if pixelRatio > 2 {
		pixelRatio = 2
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	g := &GL{
		width:      int32(width),
		height:     int32(height),
		pixelRatio: float32(pixelRatio),
	}

	if err := g.createFramebuffer(); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	var err error
	g.meshProg, err = shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		g.Destroy()
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	g.gridProg, err = shader.CompileProgram(gridVertexShader, gridFragmentShader)
	if err != nil {
		g.Destroy()
		return nil, fmt.Errorf("grid shader: %w", err)
	}

	return g, nil
}

func (g *GL) bufferWidth() int32  { return int32(float32(g.width) * g.pixelRatio) }
func (g *GL) bufferHeight() int32 { return int32(float32(g.height) * g.pixelRatio) }

func (g *GL) createFramebuffer() error {
	gl.GenFramebuffers(1, &g.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)

	gl.GenTextures(1, &g.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, g.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, g.bufferWidth(), g.bufferHeight(), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, g.colorTexture, 0)

	gl.GenRenderbuffers(1, &g.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, g.bufferWidth(), g.bufferHeight())
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Resize matches the drawing buffer to a new panel content box.
// Camera framing and loaded geometry are untouched.
func (g *GL) Resize(width, height int) {
	if int32(width) == g.width && int32(height) == g.height {
		return
	}
	g.width = int32(width)
	g.height = int32(height)

	gl.BindTexture(gl.TEXTURE_2D, g.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, g.bufferWidth(), g.bufferHeight(), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, g.bufferWidth(), g.bufferHeight())

	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// UploadMesh uploads the node's geometry as an interleaved
// position/normal buffer. Called once per instance, after load.
func (g *GL) UploadMesh(node *scene.MeshNode) {
	geo := node.Geometry
	interleaved := make([]float32, 0, len(geo.Positions)*6)
	for i := range geo.Positions {
		interleaved = append(interleaved,
			geo.Positions[i][0], geo.Positions[i][1], geo.Positions[i][2],
			geo.Normals[i][0], geo.Normals[i][1], geo.Normals[i][2],
		)
	}

	gl.GenVertexArrays(1, &g.meshVAO)
	gl.BindVertexArray(g.meshVAO)

	gl.GenBuffers(1, &g.meshVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.meshVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, gl.Ptr(interleaved), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.meshEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.meshEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geo.Indices)*4, gl.Ptr(geo.Indices), gl.STATIC_DRAW)

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindVertexArray(0)
	g.indexCount = int32(len(geo.Indices))
}

// UploadGrid uploads the grid helper's line vertices.
func (g *GL) UploadGrid(grid *scene.Grid) {
	verts := grid.Vertices()
	flat := make([]float32, 0, len(verts)*6)
	for _, v := range verts {
		flat = append(flat,
			v.Position[0], v.Position[1], v.Position[2],
			v.Color[0], v.Color[1], v.Color[2],
		)
	}

	gl.GenVertexArrays(1, &g.gridVAO)
	gl.BindVertexArray(g.gridVAO)

	gl.GenBuffers(1, &g.gridVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(flat)*4, gl.Ptr(flat), gl.STATIC_DRAW)

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindVertexArray(0)
	g.gridVertCount = int32(len(verts))
}

// Render draws the scene through the camera into the framebuffer and
// returns the color texture for compositing.
func (g *GL) Render(s *scene.Scene, cam *camera.Orbit) uint32 {
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	gl.Viewport(0, 0, g.bufferWidth(), g.bufferHeight())

	if s.Background.Transparent {
		gl.ClearColor(0, 0, 0, 0)
	} else {
		c := s.Background.Color
		gl.ClearColor(c.X(), c.Y(), c.Z(), 1)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	if s.Grid != nil && g.gridVAO != 0 {
		gl.UseProgram(g.gridProg)
		setMat4(g.gridProg, "uView", view)
		setMat4(g.gridProg, "uProjection", proj)
		gl.BindVertexArray(g.gridVAO)
		gl.DrawArrays(gl.LINES, 0, g.gridVertCount)
	}

	if s.Mesh != nil && g.meshVAO != 0 {
		gl.UseProgram(g.meshProg)
		setMat4(g.meshProg, "uModel", s.Mesh.Transform())
		setMat4(g.meshProg, "uView", view)
		setMat4(g.meshProg, "uProjection", proj)
		setVec3(g.meshProg, "uBaseColor", s.Mesh.Material.Color)
		setFloat(g.meshProg, "uMetalness", s.Mesh.Material.Metalness)
		setFloat(g.meshProg, "uRoughness", s.Mesh.Material.Roughness)
		setVec3(g.meshProg, "uCameraPos", cam.Position())
		setVec3(g.meshProg, "uHemiSky", s.Lights.Hemisphere.SkyColor)
		setVec3(g.meshProg, "uHemiGround", s.Lights.Hemisphere.GroundColor)
		setFloat(g.meshProg, "uHemiIntensity", s.Lights.Hemisphere.Intensity)
		setVec3(g.meshProg, "uLightDir", s.Lights.Directional.Direction)
		setVec3(g.meshProg, "uLightColor", s.Lights.Directional.Color)
		setFloat(g.meshProg, "uLightIntensity", s.Lights.Directional.Intensity)

		gl.BindVertexArray(g.meshVAO)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, 0)
	}

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return g.colorTexture
}

// Texture returns the framebuffer's color texture.
func (g *GL) Texture() uint32 {
	return g.colorTexture
}

// Size returns the logical panel size.
func (g *GL) Size() (width, height int) {
	return int(g.width), int(g.height)
}

// Destroy releases all GL resources owned by the renderer.
func (g *GL) Destroy() {
	if g.meshVAO != 0 {
		gl.DeleteVertexArrays(1, &g.meshVAO)
		gl.DeleteBuffers(1, &g.meshVBO)
		gl.DeleteBuffers(1, &g.meshEBO)
	}
	if g.gridVAO != 0 {
		gl.DeleteVertexArrays(1, &g.gridVAO)
		gl.DeleteBuffers(1, &g.gridVBO)
	}
	if g.meshProg != 0 {
		gl.DeleteProgram(g.meshProg)
	}
	if g.gridProg != 0 {
		gl.DeleteProgram(g.gridProg)
	}
	if g.fbo != 0 {
		gl.DeleteFramebuffers(1, &g.fbo)
		gl.DeleteTextures(1, &g.colorTexture)
		gl.DeleteRenderbuffers(1, &g.depthRBO)
	}
}

func setMat4(program uint32, name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(shader.Uniform(program, name), 1, false, &m[0])
}

func setVec3(program uint32, name string, v mgl32.Vec3) {
	gl.Uniform3f(shader.Uniform(program, name), v.X(), v.Y(), v.Z())
}

func setFloat(program uint32, name string, f float32) {
	gl.Uniform1f(shader.Uniform(program, name), f)
}
