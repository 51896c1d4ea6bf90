package evmrs

// sstoreCosts holds the six-constant tuple (dynGas1, dynGas2, dynGas3,
// refund1, refund2, refund3) for one revision's SSTORE matrix (see
// DESIGN.md Open Question 1 for the dirty/clean transition table this
// encodes).
type sstoreCosts struct {
	dynGas1, dynGas2, dynGas3    int64
	refund1, refund2, refund3    int64
}

var sstoreCostTable = map[Revision]sstoreCosts{
	London: {
		dynGas1: 100, dynGas2: 2900, dynGas3: 20000,
		refund1: 5000 - 2100 - 100, refund2: 4800, refund3: 20000 - 100,
	},
	Berlin: {
		dynGas1: 100, dynGas2: 2900, dynGas3: 20000,
		refund1: 5000 - 2100 - 100, refund2: 15000, refund3: 20000 - 100,
	},
	Istanbul: {
		dynGas1: 800, dynGas2: 5000, dynGas3: 20000,
		refund1: 4200, refund2: 15000, refund3: 19200,
	},
}

var sstoreCostPreIstanbul = sstoreCosts{
	dynGas1: 5000, dynGas2: 5000, dynGas3: 20000,
	refund1: 0, refund2: 0, refund3: 0,
}

func sstoreCostsFor(rev Revision) sstoreCosts {
	switch {
	case rev >= London:
		return sstoreCostTable[London]
	case rev == Berlin:
		return sstoreCostTable[Berlin]
	case rev == Istanbul:
		return sstoreCostTable[Istanbul]
	default:
		return sstoreCostPreIstanbul
	}
}

// sstoreGasAndRefund maps a StorageStatus onto (dynamic gas, refund delta)
// per the nine-case matrix. Refund deltas may be negative (clawing back a
// refund previously granted earlier in the same transaction).
func sstoreGasAndRefund(rev Revision, status StorageStatus) (int64, int64) {
	c := sstoreCostsFor(rev)
	switch status {
	case StorageAssigned:
		return c.dynGas1, 0
	case StorageAdded:
		return c.dynGas3, 0
	case StorageDeleted:
		return c.dynGas2, c.refund2
	case StorageModified:
		return c.dynGas2, 0
	case StorageDeletedAdded:
		return c.dynGas1, -c.refund2
	case StorageModifiedDeleted:
		return c.dynGas1, c.refund2
	case StorageDeletedRestored:
		return c.dynGas1, -c.refund2 + c.refund1
	case StorageAddedDeleted:
		return c.dynGas1, c.refund3
	case StorageModifiedRestored:
		return c.dynGas1, c.refund1
	default:
		return c.dynGas1, 0
	}
}
