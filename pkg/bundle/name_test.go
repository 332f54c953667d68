package bundle

import "testing"

func TestPackageName(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"./node_modules/react/index.js", "react", true},
		{"./node_modules/@babel/core/lib/x.js", "@babel/core", true},
		{"a/node_modules/b/node_modules/c/x.js", "c", true},
		{"./node_modules/lodash-es/lodash.js + 640 modules", "lodash-es", true},
		{"babel-loader!./node_modules/dayjs/dayjs.min.js", "dayjs", true},
		{`C:\proj\node_modules\axios\index.js`, "axios", true},
		{"./node_modules/left-pad", "left-pad", true},
		{"./src/app.js", "", false},
		{"node_modules/", "", false},
		{"./node_modules//x.js", "", false},
		{"./node_modules/@scope/", "", false},
		{"./node_modules/@scope", "", false},
		{"(webpack)/buildin/global.js", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := PackageName(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PackageName(%q) = %q, %v, want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
