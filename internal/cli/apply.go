package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slice-align/internal/imageio"
	"slice-align/internal/landmark"
	"slice-align/internal/match"
	"slice-align/internal/transform"
	"slice-align/internal/warp"
)

func newApplyCmd(root *Root) *cobra.Command {
	var (
		transformPath string
		pairsPath     string
		inPath        string
		outPath       string
		width         int
		height        int
		invert        bool
		useMLS        bool
		mlsBase       string
		mlsAlpha      float64
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Resample an image under a fitted transform",
		Long: `Resample an image under either a saved global transform (--transform) or a
moving-least-squares deformation fit directly to a landmark file (--mls).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := imageio.Load(inPath)
			if err != nil {
				return err
			}
			b := src.Bounds()
			if width <= 0 {
				width = b.Dx()
			}
			if height <= 0 {
				height = b.Dy()
			}

			if useMLS {
				if pairsPath == "" {
					return fmt.Errorf("--mls needs --pairs")
				}
				base, err := transform.ParseKind(mlsBase)
				if err != nil {
					return err
				}
				matches, err := landmark.Load(pairsPath)
				if err != nil {
					return err
				}
				// Resampling walks destination pixels, so fit the
				// reverse mapping from flipped matches.
				flipped := make([]match.PointMatch, len(matches))
				for i, m := range matches {
					flipped[i] = m.Flip()
				}
				model := transform.NewMLS(base, mlsAlpha)
				if err := model.Fit(flipped); err != nil {
					return err
				}
				root.Log.Info("warping with moving least squares",
					"base", base.String(), "alpha", mlsAlpha, "controls", len(matches))
				out := warp.Local(src, model, width, height)
				return imageio.SavePNG(outPath, out)
			}

			if transformPath == "" {
				return fmt.Errorf("need --transform or --mls")
			}
			kind, t, err := landmark.LoadTransform(transformPath)
			if err != nil {
				return err
			}
			root.Log.Info("warping", "model", kind.String(), "invert", invert)

			if invert {
				out, ok := warp.Inverse(src, t, width, height)
				if !ok {
					return fmt.Errorf("apply: %w", transform.ErrNonInvertible)
				}
				return imageio.SavePNG(outPath, out)
			}
			return imageio.SavePNG(outPath, warp.Affine(src, t, width, height))
		},
	}

	cmd.Flags().StringVar(&transformPath, "transform", "", "fitted transform JSON")
	cmd.Flags().StringVarP(&pairsPath, "pairs", "p", "", "landmark JSON file (for --mls)")
	cmd.Flags().StringVarP(&inPath, "input", "i", "", "input image (required)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output PNG (required)")
	cmd.Flags().IntVar(&width, "width", 0, "output width (0 = input width)")
	cmd.Flags().IntVar(&height, "height", 0, "output height (0 = input height)")
	cmd.Flags().BoolVar(&invert, "invert", false, "apply the inverse transform")
	cmd.Flags().BoolVar(&useMLS, "mls", false, "fit and apply a moving-least-squares deformation")
	cmd.Flags().StringVar(&mlsBase, "mls-base", "similarity", "mls base model")
	cmd.Flags().Float64Var(&mlsAlpha, "mls-alpha", 1.0, "mls falloff exponent")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}
