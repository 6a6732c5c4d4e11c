package validate

// DefaultSchema returns the constraints for the current pipeline schema.
// It covers the sections the built-in presets exercise; user documents may
// carry additional open sections.
func DefaultSchema() Schema {
	return Schema{
		Sections: []Section{
			{
				Path:     "pipeline_setup",
				Required: true,
				Closed:   true,
				Keys: []KeyRule{
					{Name: "pipeline_name", Required: true, Check: CheckString},
					{Name: "output_directory", Required: true, Check: CheckMapping},
					{Name: "working_directory", Check: CheckMapping},
					{Name: "log_directory", Check: CheckMapping},
					{Name: "crash_log_directory", Check: CheckMapping},
					{Name: "system_config", Check: CheckMapping},
				},
			},
			{
				Path:     "pipeline_setup.output_directory",
				Required: true,
				Keys: []KeyRule{
					{Name: "path", Required: true, Check: CheckString},
					{Name: "write_func_outputs", Check: CheckBool},
					{Name: "quality_control", Check: CheckMapping},
				},
			},
			{
				Path: "pipeline_setup.system_config",
				Keys: []KeyRule{
					{Name: "max_cores_per_participant", Check: CheckNumber},
					{Name: "num_ants_threads", Check: CheckNumber},
				},
			},
			{
				Path: "anatomical_preproc",
				Keys: []KeyRule{{Name: "run", Check: CheckRunSwitch}},
			},
			{
				Path: "functional_preproc",
				Keys: []KeyRule{{Name: "run", Check: CheckRunSwitch}},
			},
			{
				Path: "functional_preproc.despiking",
				Keys: []KeyRule{{Name: "run", Check: CheckRunSwitch}},
			},
			{
				Path: "functional_preproc.slice_timing_correction",
				Keys: []KeyRule{{Name: "run", Check: CheckRunSwitch}},
			},
			{
				Path: "nuisance_corrections.2-nuisance_regression",
				Keys: []KeyRule{
					{Name: "run", Check: CheckRunSwitch},
					{Name: "Regressors", Check: CheckSequence},
					{Name: "bandpass_filtering", Check: CheckMapping},
				},
			},
			{
				Path:      "post_processing.spatial_smoothing",
				Exclusive: [][2]string{{"fwhm", "fwhm_by_resolution"}},
				Keys: []KeyRule{
					{Name: "output", Check: CheckSequence},
					{Name: "smoothing_method", Check: CheckSequence},
					{Name: "fwhm", Check: CheckSequence},
					{Name: "fwhm_by_resolution", Check: CheckMapping},
				},
			},
			{
				Path: "timeseries_extraction",
				Keys: []KeyRule{
					{Name: "run", Check: CheckRunSwitch},
					{Name: "tse_atlases", Check: CheckSequence},
				},
			},
		},
		KeyedLists: map[string]string{
			"nuisance_corrections.2-nuisance_regression.Regressors": "Name",
		},
	}
}

// Default returns a validator for the current pipeline schema.
func Default() *Validator {
	return New(DefaultSchema())
}
