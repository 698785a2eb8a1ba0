//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	diagramEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	diagramEngine.Set("loadDocument", js.FuncOf(loadDocument))
	diagramEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	diagramEngine.Set("updateSettings", js.FuncOf(updateSettings))
	diagramEngine.Set("createComponent", js.FuncOf(createComponent))
	diagramEngine.Set("updateComponent", js.FuncOf(updateComponent))
	diagramEngine.Set("rotateComponent", js.FuncOf(rotateComponent))
	diagramEngine.Set("removeItem", js.FuncOf(removeItem))
	diagramEngine.Set("select", js.FuncOf(selectItem))
	diagramEngine.Set("onRedraw", js.FuncOf(onRedraw))

	// --- Queries (frontend ← engine) ---
	diagramEngine.Set("render", js.FuncOf(render))
	diagramEngine.Set("hitTest", js.FuncOf(hitTest))
	diagramEngine.Set("getDocument", js.FuncOf(getDocument))
	diagramEngine.Set("getSelection", js.FuncOf(getSelection))
	diagramEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	diagramEngine.Set("getShapes", js.FuncOf(getShapes))
	diagramEngine.Set("isDirty", js.FuncOf(isDirty))
	diagramEngine.Set("generateUniqueId", js.FuncOf(generateUniqueID))

	// Register on global scope
	js.Global().Set("diagramEngine", diagramEngine)

	// Signal that WASM is ready
	js.Global().Set("diagramWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing document JSON")
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	eng.LoadSampleDocument()
	return okResult()
}

func updateSettings(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing settings JSON")
	}
	var changes map[string]any
	if err := json.Unmarshal([]byte(args[0].String()), &changes); err != nil {
		return errorResult("invalid settings JSON")
	}
	eng.UpdateSettings(changes)
	return okResult()
}

func createComponent(this js.Value, args []js.Value) any {
	var spec engine.ComponentSpec
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[0].String()), &spec); err != nil {
			return errorResult("invalid component JSON")
		}
	}
	return js.ValueOf(eng.CreateComponent(spec))
}

func updateComponent(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("expected id and changes JSON")
	}
	var changes map[string]any
	if err := json.Unmarshal([]byte(args[1].String()), &changes); err != nil {
		return errorResult("invalid changes JSON")
	}
	if err := eng.UpdateComponent(args[0].String(), changes); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func rotateComponent(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("expected id and delta")
	}
	angle, err := eng.RotateComponent(args[0].String(), args[1].Float())
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(angle)
}

func removeItem(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing id")
	}
	if err := eng.RemoveItem(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func selectItem(this js.Value, args []js.Value) any {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	eng.SetSelection(id)
	return nil
}

// onRedraw calls fn with the JSON of every redraw notice.
func onRedraw(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return nil
	}
	fn := args[0]
	eng.OnRedraw(func(n diagram.Notice) {
		data, _ := json.Marshal(n)
		fn.Invoke(string(data))
	})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getDocument(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getShapes(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetShapes())
}

func isDirty(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.IsDirty())
}

func generateUniqueID(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GenerateUniqueID())
}
