//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL sources under assets/shaders into SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary.
func (Build) Engine() error {
	if err := buildShaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "velecs", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if _, err := executeCmd("glslc", withArgs("assets/shaders/mesh.vert", "-o", "assets/shaders/mesh.vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("assets/shaders/mesh.frag", "-o", "assets/shaders/mesh.frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}
