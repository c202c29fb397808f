package bridge

import (
	"encoding/json"
	"fmt"
)

// asks the human to confirm removal of reference materials by url
const ActionDeleteReferenceMaterials = "DeleteReferenceMaterials"

type DeleteReferenceMaterialsArgs struct {
	URLs []string `json:"urls"`
}

// decodes the args of a DeleteReferenceMaterials request
func DecodeDeleteArgs(req Request) (DeleteReferenceMaterialsArgs, error) {
	if req.Name != ActionDeleteReferenceMaterials {
		return DeleteReferenceMaterialsArgs{}, fmt.Errorf("action %q is not %s", req.Name, ActionDeleteReferenceMaterials)
	}

	var args DeleteReferenceMaterialsArgs
	if err := json.Unmarshal(req.Args, &args); err != nil {
		return DeleteReferenceMaterialsArgs{}, fmt.Errorf("invalid %s args: %w", req.Name, err)
	}

	if args.URLs == nil {
		args.URLs = []string{}
	}

	return args, nil
}
