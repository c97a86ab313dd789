package chain

// MaterialContractABI is the subset of the supply chain contract ABI the
// service calls.
const MaterialContractABI = `[
	{
		"type": "function",
		"name": "addMaterial",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_name", "type": "string"},
			{"name": "_description", "type": "string"},
			{"name": "_stage", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "materialCounter",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "getMaterialStage",
		"stateMutability": "view",
		"inputs": [{"name": "_materialId", "type": "uint256"}],
		"outputs": [{"name": "", "type": "string"}]
	}
]`

const (
	methodAddMaterial      = "addMaterial"
	methodMaterialCounter  = "materialCounter"
	methodGetMaterialStage = "getMaterialStage"
)
