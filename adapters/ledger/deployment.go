package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

// Deployment is the per-network record written at contract deployment
// time. It carries the contract coordinates for one symbolic network.
type Deployment struct {
	AuthContractAddress string `json:"authContractAddress"`
	DeploymentTimestamp string `json:"deploymentTimestamp"`
	Network             string `json:"network"`
}

// LoadDeployment reads the deployment record for a network from dir
// (one <network>.json file per network).
func LoadDeployment(dir, network string) (Deployment, error) {
	path := filepath.Join(dir, network+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return Deployment{}, fmt.Errorf("%w: no deployment record for network %q: %v", core.ErrConfiguration, network, err)
	}

	var d Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return Deployment{}, fmt.Errorf("%w: invalid deployment record for network %q: %v", core.ErrConfiguration, network, err)
	}

	if !common.IsHexAddress(d.AuthContractAddress) {
		return Deployment{}, fmt.Errorf("%w: deployment record for network %q has no valid contract address", core.ErrConfiguration, network)
	}

	return d, nil
}

// ContractAddress returns the parsed contract address.
func (d Deployment) ContractAddress() common.Address {
	return common.HexToAddress(d.AuthContractAddress)
}
