package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
)

// wgslVertexFormatMap maps WGSL type names to their corresponding vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {backend.VertexFormatFloat32, 4},
	"vec2f":     {backend.VertexFormatFloat32x2, 8},
	"vec2<f32>": {backend.VertexFormatFloat32x2, 8},
	"vec3f":     {backend.VertexFormatFloat32x3, 12},
	"vec3<f32>": {backend.VertexFormatFloat32x3, 12},
	"vec4f":     {backend.VertexFormatFloat32x4, 16},
	"vec4<f32>": {backend.VertexFormatFloat32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// alignRegex and sizeRegex match the explicit layout attributes @align(N) and @size(N)
	alignRegex = regexp.MustCompile(`@align\((\d+)\)`)
	sizeRegex  = regexp.MustCompile(`@size\((\d+)\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// vertexSignatureRegex captures the parameter list of the @vertex entry point
	vertexSignatureRegex = regexp.MustCompile(`(?s)@vertex\s*fn\s+\w+\s*\(([^)]*)\)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(1) @binding(0) var t_diffuse: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexInputs extracts the vertex buffer layout consumed by the vertex entry point.
// The entry point's parameter type is matched against the pure vertex input structs (those
// with @location attributes but no @builtin fields). Only the struct the entry point takes
// is returned, as a single buffer layout at slot 0.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - structs: all parsed struct blocks from the source
//
// Returns:
//   - []backend.VertexBufferLayout: the vertex buffer layouts, empty if the entry point takes no vertex struct
func parseVertexInputs(source string, structs []parsedStruct) []backend.VertexBufferLayout {
	inputType := ""
	if m := vertexSignatureRegex.FindStringSubmatch(source); m != nil {
		for _, param := range splitAtTopLevelCommas(m[1]) {
			if fm := fieldRegex.FindStringSubmatch(strings.TrimSpace(param)); fm != nil {
				inputType = strings.TrimSpace(fm[2])
				break
			}
		}
	}

	for _, ps := range structs {
		if ps.name != inputType || !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			return nil
		}
		return []backend.VertexBufferLayout{layout}
	}
	return nil
}

// parseDeclarations extracts all @group(N) @binding(M) resource declarations from WGSL
// source, sorted by group then binding.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []Declaration: the classified declarations
func parseDeclarations(source string) []Declaration {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(source, -1)
	decls := make([]Declaration, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		d := Declaration{
			Group:        uint32(group),
			Binding:      uint32(binding),
			AddressSpace: strings.TrimSpace(match[3]),
			Name:         strings.TrimSpace(match[4]),
			TypeName:     strings.TrimSpace(match[5]),
		}
		d.Kind, d.Known = classifyResource(d.AddressSpace, d.TypeName)
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].Group != decls[j].Group {
			return decls[i].Group < decls[j].Group
		}
		return decls[i].Binding < decls[j].Binding
	})
	return decls
}

// parseEntryPoint extracts the entry point function name for the given shader stage
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - stage: the stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage backend.ShaderStage) string {
	var re *regexp.Regexp
	switch stage {
	case backend.ShaderStageVertex:
		re = vertexEntryRegex
	case backend.ShaderStageFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location, @builtin, @align and @size attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}

		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		if m := alignRegex.FindStringSubmatch(line); m != nil {
			field.alignOverride, _ = strconv.ParseUint(m[1], 10, 64)
		}
		if m := sizeRegex.FindStringSubmatch(line); m != nil {
			field.sizeOverride, _ = strconv.ParseUint(m[1], 10, 64)
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])

		fields = append(fields, field)
	}

	return fields
}
