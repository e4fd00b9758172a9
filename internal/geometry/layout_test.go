package geometry

import "testing"

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name  string
		g     Geometry
		fluid Extent
		lines Extent
		frame Extent
	}{
		{
			name:  "landscape",
			g:     Geometry{LogicalWidth: 800, LogicalHeight: 600, PhysicalWidth: 1600, PhysicalHeight: 1200},
			fluid: Extent{171, 128},
			lines: Extent{53, 40},
			frame: Extent{1600, 1200},
		},
		{
			name:  "portrait",
			g:     Geometry{LogicalWidth: 300, LogicalHeight: 600, PhysicalWidth: 300, PhysicalHeight: 600},
			fluid: Extent{128, 256},
			lines: Extent{20, 40},
			frame: Extent{300, 600},
		},
		{
			name:  "tiny",
			g:     Geometry{LogicalWidth: 4, LogicalHeight: 4, PhysicalWidth: 8, PhysicalHeight: 8},
			fluid: Extent{128, 128},
			lines: Extent{1, 1},
			frame: Extent{8, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(tt.g, 128, 15)
			if l.Fluid != tt.fluid {
				t.Errorf("Fluid = %v, want %v", l.Fluid, tt.fluid)
			}
			if l.Lines != tt.lines {
				t.Errorf("Lines = %v, want %v", l.Lines, tt.lines)
			}
			if l.Framebuffer != tt.frame {
				t.Errorf("Framebuffer = %v, want %v", l.Framebuffer, tt.frame)
			}
		})
	}
}

func TestExtentArea(t *testing.T) {
	if got := (Extent{3, 4}).Area(); got != 12 {
		t.Errorf("Area() = %d, want 12", got)
	}
}
