package vorbis

import (
	"github.com/pkg/errors"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/codebook"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// writeStrippedSetupBody re-expands the floor, residue, mapping, and mode
// lists of a setup packet whose redundant/implied fields Wwise stripped out
// at encode time. Every field not reconstructable from context (always
// floor type 1, always mapping type 0, window/transform type always 0) is
// synthesized rather than read.
func writeStrippedSetupBody(br *bitstream.Reader, pw *bitstream.PageWriter, d *wwriff.Descriptor, codebookCount int) (*HeaderResult, error) {
	floorCount, err := writeFloors(br, pw, codebookCount)
	if err != nil {
		return nil, err
	}

	residueCount, err := writeResidues(br, pw, codebookCount)
	if err != nil {
		return nil, err
	}

	mappingCount, err := writeMappings(br, pw, int(d.Channels), floorCount, residueCount)
	if err != nil {
		return nil, err
	}

	return writeModes(br, pw, mappingCount)
}

func writeFloors(br *bitstream.Reader, pw *bitstream.PageWriter, codebookCount int) (int, error) {
	floorCountLess1, err := br.ReadUint(6)
	if err != nil {
		return 0, err
	}
	floorCount := int(floorCountLess1) + 1
	if err := pw.PutUint(floorCountLess1, 6); err != nil {
		return 0, err
	}

	for i := 0; i < floorCount; i++ {
		// Wwise only ever emits floor type 1.
		if err := pw.PutUint(1, 16); err != nil {
			return 0, err
		}

		partitions, err := br.ReadUint(5)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(partitions, 5); err != nil {
			return 0, err
		}

		partitionClass := make([]uint32, partitions)
		maxClass := uint32(0)
		for j := uint32(0); j < partitions; j++ {
			class, err := br.ReadUint(4)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(class, 4); err != nil {
				return 0, err
			}
			partitionClass[j] = class
			if class > maxClass {
				maxClass = class
			}
		}

		classDimensions := make([]uint32, maxClass+1)
		for j := uint32(0); j <= maxClass; j++ {
			dimsLess1, err := br.ReadUint(3)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(dimsLess1, 3); err != nil {
				return 0, err
			}
			classDimensions[j] = dimsLess1 + 1

			subclasses, err := br.ReadUint(2)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(subclasses, 2); err != nil {
				return 0, err
			}

			if subclasses != 0 {
				masterbook, err := br.ReadUint(8)
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(masterbook, 8); err != nil {
					return 0, err
				}
				if int(masterbook) >= codebookCount {
					return 0, errors.New("vorbis: invalid floor1 masterbook")
				}
			}

			for k := uint32(0); k < (1 << subclasses); k++ {
				subclassBookPlus1, err := br.ReadUint(8)
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(subclassBookPlus1, 8); err != nil {
					return 0, err
				}
				subclassBook := int(subclassBookPlus1) - 1
				if subclassBook >= 0 && subclassBook >= codebookCount {
					return 0, errors.New("vorbis: invalid floor1 subclass book")
				}
			}
		}

		multiplierLess1, err := br.ReadUint(2)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(multiplierLess1, 2); err != nil {
			return 0, err
		}

		rangebits, err := br.ReadUint(4)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(rangebits, 4); err != nil {
			return 0, err
		}

		for j := uint32(0); j < partitions; j++ {
			class := partitionClass[j]
			for k := uint32(0); k < classDimensions[class]; k++ {
				x, err := br.ReadUint(int(rangebits))
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(x, int(rangebits)); err != nil {
					return 0, err
				}
			}
		}
	}

	return floorCount, nil
}

func writeResidues(br *bitstream.Reader, pw *bitstream.PageWriter, codebookCount int) (int, error) {
	residueCountLess1, err := br.ReadUint(6)
	if err != nil {
		return 0, err
	}
	residueCount := int(residueCountLess1) + 1
	if err := pw.PutUint(residueCountLess1, 6); err != nil {
		return 0, err
	}

	for i := 0; i < residueCount; i++ {
		residueType, err := br.ReadUint(2)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(residueType, 16); err != nil {
			return 0, err
		}
		if residueType > 2 {
			return 0, errors.New("vorbis: invalid residue type")
		}

		residueBegin, err := br.ReadUint(24)
		if err != nil {
			return 0, err
		}
		residueEnd, err := br.ReadUint(24)
		if err != nil {
			return 0, err
		}
		partitionSizeLess1, err := br.ReadUint(24)
		if err != nil {
			return 0, err
		}
		classificationsLess1, err := br.ReadUint(6)
		if err != nil {
			return 0, err
		}
		classbook, err := br.ReadUint(8)
		if err != nil {
			return 0, err
		}

		if err := pw.PutUint(residueBegin, 24); err != nil {
			return 0, err
		}
		if err := pw.PutUint(residueEnd, 24); err != nil {
			return 0, err
		}
		if err := pw.PutUint(partitionSizeLess1, 24); err != nil {
			return 0, err
		}
		if err := pw.PutUint(classificationsLess1, 6); err != nil {
			return 0, err
		}
		if err := pw.PutUint(classbook, 8); err != nil {
			return 0, err
		}
		if int(classbook) >= codebookCount {
			return 0, errors.New("vorbis: invalid residue classbook")
		}

		classifications := int(classificationsLess1) + 1
		cascade := make([]uint32, classifications)
		for j := 0; j < classifications; j++ {
			lowBits, err := br.ReadUint(3)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(lowBits, 3); err != nil {
				return 0, err
			}

			bitflag, err := br.ReadUint(1)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(bitflag, 1); err != nil {
				return 0, err
			}

			var highBits uint32
			if bitflag != 0 {
				highBits, err = br.ReadUint(5)
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(highBits, 5); err != nil {
					return 0, err
				}
			}

			cascade[j] = highBits*8 + lowBits
		}

		for j := 0; j < classifications; j++ {
			for k := uint32(0); k < 8; k++ {
				if cascade[j]&(1<<k) != 0 {
					book, err := br.ReadUint(8)
					if err != nil {
						return 0, err
					}
					if err := pw.PutUint(book, 8); err != nil {
						return 0, err
					}
					if int(book) >= codebookCount {
						return 0, errors.New("vorbis: invalid residue book")
					}
				}
			}
		}
	}

	return residueCount, nil
}

func writeMappings(br *bitstream.Reader, pw *bitstream.PageWriter, channels, floorCount, residueCount int) (int, error) {
	mappingCountLess1, err := br.ReadUint(6)
	if err != nil {
		return 0, err
	}
	mappingCount := int(mappingCountLess1) + 1
	if err := pw.PutUint(mappingCountLess1, 6); err != nil {
		return 0, err
	}

	for i := 0; i < mappingCount; i++ {
		// Wwise only ever emits mapping type 0.
		if err := pw.PutUint(0, 16); err != nil {
			return 0, err
		}

		submapsFlag, err := br.ReadUint(1)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(submapsFlag, 1); err != nil {
			return 0, err
		}

		submaps := 1
		if submapsFlag != 0 {
			submapsLess1, err := br.ReadUint(4)
			if err != nil {
				return 0, err
			}
			submaps = int(submapsLess1) + 1
			if err := pw.PutUint(submapsLess1, 4); err != nil {
				return 0, err
			}
		}

		squarePolarFlag, err := br.ReadUint(1)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(squarePolarFlag, 1); err != nil {
			return 0, err
		}

		if squarePolarFlag != 0 {
			couplingStepsLess1, err := br.ReadUint(8)
			if err != nil {
				return 0, err
			}
			couplingSteps := int(couplingStepsLess1) + 1
			if err := pw.PutUint(couplingStepsLess1, 8); err != nil {
				return 0, err
			}

			bits := codebook.Ilog(uint32(channels - 1))
			for j := 0; j < couplingSteps; j++ {
				magnitude, err := br.ReadUint(bits)
				if err != nil {
					return 0, err
				}
				angle, err := br.ReadUint(bits)
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(magnitude, bits); err != nil {
					return 0, err
				}
				if err := pw.PutUint(angle, bits); err != nil {
					return 0, err
				}
				if angle == magnitude || int(magnitude) >= channels || int(angle) >= channels {
					return 0, errors.New("vorbis: invalid coupling")
				}
			}
		}

		reserved, err := br.ReadUint(2)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(reserved, 2); err != nil {
			return 0, err
		}
		if reserved != 0 {
			return 0, errors.New("vorbis: mapping reserved field nonzero")
		}

		if submaps > 1 {
			for j := 0; j < channels; j++ {
				mux, err := br.ReadUint(4)
				if err != nil {
					return 0, err
				}
				if err := pw.PutUint(mux, 4); err != nil {
					return 0, err
				}
				if int(mux) >= submaps {
					return 0, errors.New("vorbis: mapping_mux >= submaps")
				}
			}
		}

		for j := 0; j < submaps; j++ {
			timeConfig, err := br.ReadUint(8)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(timeConfig, 8); err != nil {
				return 0, err
			}

			floorNumber, err := br.ReadUint(8)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(floorNumber, 8); err != nil {
				return 0, err
			}
			if int(floorNumber) >= floorCount {
				return 0, errors.New("vorbis: invalid floor mapping")
			}

			residueNumber, err := br.ReadUint(8)
			if err != nil {
				return 0, err
			}
			if err := pw.PutUint(residueNumber, 8); err != nil {
				return 0, err
			}
			if int(residueNumber) >= residueCount {
				return 0, errors.New("vorbis: invalid residue mapping")
			}
		}
	}

	return mappingCount, nil
}

func writeModes(br *bitstream.Reader, pw *bitstream.PageWriter, mappingCount int) (*HeaderResult, error) {
	modeCountLess1, err := br.ReadUint(6)
	if err != nil {
		return nil, err
	}
	modeCount := int(modeCountLess1) + 1
	if err := pw.PutUint(modeCountLess1, 6); err != nil {
		return nil, err
	}

	modeBlockflag := make([]bool, modeCount)
	modeBits := codebook.Ilog(uint32(modeCount - 1))

	for i := 0; i < modeCount; i++ {
		blockFlag, err := br.ReadUint(1)
		if err != nil {
			return nil, err
		}
		if err := pw.PutUint(blockFlag, 1); err != nil {
			return nil, err
		}
		modeBlockflag[i] = blockFlag != 0

		// Only window type and transform type 0 exist.
		if err := pw.PutUint(0, 16); err != nil {
			return nil, err
		}
		if err := pw.PutUint(0, 16); err != nil {
			return nil, err
		}

		mapping, err := br.ReadUint(8)
		if err != nil {
			return nil, err
		}
		if err := pw.PutUint(mapping, 8); err != nil {
			return nil, err
		}
		if int(mapping) >= mappingCount {
			return nil, errors.New("vorbis: invalid mode mapping")
		}
	}

	if err := pw.PutUint(1, 1); err != nil { // framing
		return nil, err
	}

	return &HeaderResult{ModeBlockflag: modeBlockflag, ModeBits: modeBits}, nil
}
