//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

// maxFileResults caps the paths returned to the model.
const maxFileResults = 50

func newFindFile(files desktop.FileSearcher) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "find_file",
		Description: `Search for files by name in the working directory and its
subdirectories. The match is case-insensitive and partial: searching
"config" matches "config.yaml" and "my_config.json".`,
		Args: []tool.Arg{
			{Name: "filename", Type: tool.ArgString, Description: "filename or partial name"},
		},
		Category:        tool.CategorySearch,
		Behavior:        tool.BehaviorTerminal,
		SuccessKeys:     []string{"found"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Found {count} file(s) matching '{filename}'",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		filename := args["filename"].(string)
		matches, err := files.Find(ctx, filename)
		if err != nil {
			return failure(err.Error(), map[string]any{
				"found": false, "count": 0, "filename": filename,
			}), nil
		}
		results := matches
		if len(results) > maxFileResults {
			results = results[:maxFileResults]
		}
		return map[string]any{
			"found":    len(matches) > 0,
			"count":    len(matches),
			"filename": filename,
			"results":  results,
		}, nil
	})
}
