package gpu

// Uniform and texture slot names shared by the pipeline and every program.
const (
	UniformProjection     = "u_projection"
	UniformView           = "u_view"
	UniformCameraPosition = "u_camera_position"
	// x, y, width, height in pixels.
	UniformViewport = "u_viewport"
	UniformAmbient  = "u_ambient"

	UniformModel         = "u_model"
	UniformDiffuseColour = "u_diffuse_colour"
	UniformShininess     = "u_shininess"

	TextureDiffuse  = "t_diffuse"
	TextureSpecular = "t_specular"
	TextureNormal   = "t_normal"

	UniformLightIndex     = "u_light_index"
	UniformLightKind      = "u_light_kind"
	UniformLightColour    = "u_light_colour"
	UniformLightIntensity = "u_light_intensity"
	UniformLightPosition  = "u_light_position"
	UniformLightDirection = "u_light_direction"
	UniformLightRange     = "u_light_range"
	UniformLightSpotCos   = "u_light_spot_cos"
)

// Values of UniformLightKind.
const (
	LightKindDirectional int32 = iota
	LightKindPoint
	LightKindSpot
)

// Names of the programs every device provides.
const (
	ProgramUnlit         = "unlit"
	ProgramLit           = "lit"
	ProgramDepth         = "depth"
	ProgramGBuffer       = "gbuffer"
	ProgramDeferredLight = "deferred_light"
	ProgramAmbient       = "ambient"
)
