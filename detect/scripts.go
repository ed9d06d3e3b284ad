package detect

// In-page scripts. Each is a plain data-in/data-out function expression
// evaluated through the Page surface, so the heuristics port cleanly to any
// CDP-capable binding. They never retain state between evaluations.

// selectorHelpersJS is shared by the scanner and synthesizer scripts. It
// implements the selector priority chain: id, stable class combination,
// data attribute, aria-label/rel, structural nth-of-type path. Classes
// matching dynamic-utility patterns (css-*, sc-*, jsx-*, numeric-prefixed)
// are excluded because they change between builds.
const selectorHelpersJS = `
	function esc(v) {
		return (window.CSS && CSS.escape) ? CSS.escape(v) : v.replace(/([^a-zA-Z0-9_-])/g, '\\$1');
	}
	function isVisible(el) {
		const r = el.getBoundingClientRect();
		const s = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && s.display !== 'none' &&
			s.visibility !== 'hidden' && s.opacity !== '0';
	}
	function isDisabled(el) {
		if (el.disabled || el.hasAttribute('disabled')) return true;
		if ((el.getAttribute('aria-disabled') || '').toLowerCase() === 'true') return true;
		return /(^|\s)(disabled|inactive)(\s|$)/.test(el.className || '');
	}
	function isPreviousControl(el) {
		const probe = ((el.textContent || '') + ' ' + (el.getAttribute('aria-label') || '') +
			' ' + (el.getAttribute('rel') || '')).toLowerCase();
		return /\bprev(ious)?\b|\bback\b|«|‹|←/.test(probe);
	}
	function stableClasses(el) {
		return Array.from(el.classList || []).filter(function(c) {
			return c && !/^css-/.test(c) && !/^sc-/.test(c) && !/^jsx-/.test(c) && !/^[0-9]/.test(c);
		});
	}
	function matchesOnly(sel, el) {
		try {
			const found = document.querySelectorAll(sel);
			return found.length === 1 && found[0] === el;
		} catch (e) {
			return false;
		}
	}
	function nthOfTypePath(el) {
		const parts = [];
		let cur = el;
		while (cur && cur.nodeType === 1 && cur.tagName !== 'BODY' && parts.length < 8) {
			const tag = cur.tagName.toLowerCase();
			let part = tag;
			const parent = cur.parentElement;
			if (parent) {
				const siblings = Array.from(parent.children).filter(function(s) {
					return s.tagName === cur.tagName;
				});
				if (siblings.length > 1) {
					part += ':nth-of-type(' + (siblings.indexOf(cur) + 1) + ')';
				}
			}
			parts.unshift(part);
			if (parent && parent.id) {
				parts.unshift('#' + esc(parent.id));
				break;
			}
			cur = parent;
		}
		return parts.join(' > ');
	}
	function uniqueSelector(el) {
		if (el.id && matchesOnly('#' + esc(el.id), el)) {
			return '#' + esc(el.id);
		}
		const tag = el.tagName.toLowerCase();
		const classes = stableClasses(el);
		if (classes.length) {
			const full = tag + '.' + classes.map(esc).join('.');
			if (matchesOnly(full, el)) return full;
			for (let i = 0; i < classes.length; i++) {
				const partial = tag + '.' + esc(classes[i]);
				if (matchesOnly(partial, el)) return partial;
			}
		}
		for (const attr of el.attributes) {
			if (attr.name.indexOf('data-') === 0 && attr.value && attr.value.length < 64) {
				const sel = tag + '[' + attr.name + '="' + attr.value.replace(/"/g, '\\"') + '"]';
				if (matchesOnly(sel, el)) return sel;
			}
		}
		const aria = el.getAttribute('aria-label');
		if (aria) {
			const sel = tag + '[aria-label="' + aria.replace(/"/g, '\\"') + '"]';
			if (matchesOnly(sel, el)) return sel;
		}
		const rel = el.getAttribute('rel');
		if (rel) {
			const sel = tag + '[rel="' + rel.replace(/"/g, '\\"') + '"]';
			if (matchesOnly(sel, el)) return sel;
		}
		return nthOfTypePath(el);
	}
`

// autoDetectItemsJS finds a plausible product item selector when the caller
// supplied none. It returns the first selector in the fallback list that
// matches at least three elements.
const autoDetectItemsJS = `() => {
	const fallbacks = [
		'[data-product-id]', '[data-sku]', '[data-item-id]',
		'.product-card', '.product-item', '.product-tile', 'li.product',
		'[class*="product-card"]', '[class*="ProductCard"]', '[class*="product-item"]',
		'.search-result', '[class*="listing-item"]', 'article',
	];
	for (const sel of fallbacks) {
		try {
			if (document.querySelectorAll(sel).length >= 3) return sel;
		} catch (e) { /* invalid selector in list, skip */ }
	}
	return '';
}`

// countItemsJS returns the raw element count for a selector. Invalid
// selectors count as zero rather than erroring the whole probe.
const countItemsJS = `(sel) => {
	try {
		return document.querySelectorAll(sel).length;
	} catch (e) {
		return 0;
	}
}`

// collectIdentitiesJS extracts one identity string per visible item, in
// strict priority: resolved link href, data identifier attribute, trimmed
// title text, leading inner markup (prefixed "html:"; hashed on the Go
// side). Counting elements is unreliable under virtual scroll, so identity
// is the only signal the probes trust.
const collectIdentitiesJS = `(sel) => {
	let items;
	try {
		items = document.querySelectorAll(sel);
	} catch (e) {
		return [];
	}
	const out = [];
	items.forEach(function(el) {
		const link = el.matches('a[href]') ? el : el.querySelector('a[href]');
		if (link && link.href) {
			out.push(link.href);
			return;
		}
		const dataAttrs = ['data-product-id', 'data-sku', 'data-item-id', 'data-id', 'data-channel'];
		for (const name of dataAttrs) {
			const holder = el.hasAttribute(name) ? el : el.querySelector('[' + name + ']');
			if (holder) {
				out.push(name + ':' + holder.getAttribute(name));
				return;
			}
		}
		const title = el.querySelector('h1,h2,h3,h4,[class*="title"],[class*="name"]');
		const text = title ? title.textContent.trim() : (el.getAttribute('title') || '').trim();
		if (text) {
			out.push(text);
			return;
		}
		out.push('html:' + (el.innerHTML || '').slice(0, 120));
	});
	return out;
}`

// pageHTMLJS returns the document's full outer HTML for excerpting.
const pageHTMLJS = `() => document.documentElement ? document.documentElement.outerHTML : ''`

// scrollInfoJS reports the current scroll position and document metrics.
const scrollInfoJS = `() => ({
	y: window.scrollY,
	viewport: window.innerHeight,
	height: Math.max(
		document.body ? document.body.scrollHeight : 0,
		document.documentElement.scrollHeight),
})`

// scrollToJS jumps to an absolute vertical position.
const scrollToJS = `(y) => { window.scrollTo(0, y); }`

// lastItemBottomJS returns the page-Y coordinate just past the last
// currently visible item, so the scroll probe measures genuinely new
// content rather than content merely off-screen.
const lastItemBottomJS = `(sel) => {
	let items;
	try {
		items = document.querySelectorAll(sel);
	} catch (e) {
		return 0;
	}
	if (!items.length) return 0;
	const r = items[items.length - 1].getBoundingClientRect();
	return r.bottom + window.scrollY;
}`

// nudgeLazyLoadJS pokes IntersectionObserver-based lazy loaders: synthetic
// scroll/resize events, sentinel/spinner elements scrolled into view, and an
// opportunistic click on any newly visible load-more control.
const nudgeLazyLoadJS = `() => {
	window.dispatchEvent(new Event('scroll'));
	window.dispatchEvent(new Event('resize'));
	document.dispatchEvent(new Event('scroll'));

	const sentinels = document.querySelectorAll(
		'[class*="sentinel"],[class*="infinite"],[class*="spinner"],[class*="loader"],[class*="loading"],[data-infinite-scroll]');
	sentinels.forEach(function(el) {
		try { el.scrollIntoView({ block: 'end' }); } catch (e) {}
	});

	let clicked = false;
	const clickables = document.querySelectorAll('button, a, [role="button"]');
	for (const el of clickables) {
		const text = (el.textContent || '').trim().toLowerCase();
		if (!/^(load|show|view|see)\s+(\d+\s+)?more\b/.test(text) && !/^more\s+(items|products|results)\b/.test(text)) continue;
		const r = el.getBoundingClientRect();
		const visible = r.width > 0 && r.height > 0 && r.top >= 0 && r.top <= window.innerHeight;
		if (!visible || el.disabled || el.hasAttribute('disabled')) continue;
		try {
			el.click();
			clicked = true;
			break;
		} catch (e) {}
	}
	return { clickedLoadMore: clicked };
}`

// pointerClickJS dispatches a full synthetic pointer sequence in page
// context, for controls that listen to mousedown/mouseup rather than click.
const pointerClickJS = `(sel) => {
	let el;
	try {
		el = document.querySelector(sel);
	} catch (e) {
		return false;
	}
	if (!el) return false;
	const r = el.getBoundingClientRect();
	const opts = {
		bubbles: true, cancelable: true, view: window,
		clientX: r.left + r.width / 2, clientY: r.top + r.height / 2,
	};
	el.dispatchEvent(new MouseEvent('mousedown', opts));
	el.dispatchEvent(new MouseEvent('mouseup', opts));
	el.dispatchEvent(new MouseEvent('click', opts));
	return true;
}`

// viewportBoxJS scrolls the element into view and returns its viewport-space
// bounding box, for the coordinate-click fallback.
const viewportBoxJS = `(sel) => {
	let el;
	try {
		el = document.querySelector(sel);
	} catch (e) {
		return null;
	}
	if (!el) return null;
	el.scrollIntoView({ block: 'center' });
	const r = el.getBoundingClientRect();
	return { x: r.left, y: r.top, width: r.width, height: r.height };
}`

// validateSelectorJS checks that a selector resolves to at least one
// visible, non-disabled element, returning the match count.
const validateSelectorJS = `(sel) => {
` + selectorHelpersJS + `
	let found;
	try {
		found = document.querySelectorAll(sel);
	} catch (e) {
		return { valid: false, matches: 0 };
	}
	let visible = 0;
	found.forEach(function(el) {
		if (isVisible(el) && !isDisabled(el)) visible++;
	});
	return { valid: visible > 0, matches: found.length };
}`

// synthesizeSelectorJS builds a selector from structured attribute hints,
// trying each strategy in priority order and validating against the live
// document before returning. Returns null when nothing usable matches.
const synthesizeSelectorJS = `(hints) => {
` + selectorHelpersJS + `
	function firstUsable(sel, wantUnique) {
		let found;
		try {
			found = document.querySelectorAll(sel);
		} catch (e) {
			return null;
		}
		const usable = Array.from(found).filter(function(el) {
			return isVisible(el) && !isDisabled(el) && !isPreviousControl(el);
		});
		if (!usable.length) return null;
		if (wantUnique && found.length !== 1) return null;
		return usable[0];
	}
	const tag = (hints.tag || '').toLowerCase();
	const prefix = tag ? tag : '';

	if (hints.rel === 'next') {
		const el = firstUsable((prefix || 'a') + '[rel="next"]', false);
		if (el) return uniqueSelector(el);
	}
	if (hints.aria_label) {
		const exact = firstUsable(prefix + '[aria-label="' + hints.aria_label.replace(/"/g, '\\"') + '"]', false);
		if (exact) return uniqueSelector(exact);
		const partial = firstUsable(prefix + '[aria-label*="' + hints.aria_label.replace(/"/g, '\\"') + '"]', false);
		if (partial) return uniqueSelector(partial);
	}
	if (hints.data) {
		for (const name in hints.data) {
			const el = firstUsable(prefix + '[' + name + '="' + String(hints.data[name]).replace(/"/g, '\\"') + '"]', false);
			if (el) return uniqueSelector(el);
		}
	}
	if (hints.classes && hints.classes.length) {
		const stable = hints.classes.filter(function(c) {
			return c && !/^css-/.test(c) && !/^sc-/.test(c) && !/^jsx-/.test(c) && !/^[0-9]/.test(c);
		});
		if (stable.length) {
			const full = firstUsable(prefix + '.' + stable.map(esc).join('.'), false);
			if (full) return uniqueSelector(full);
			for (const c of stable) {
				const partial = firstUsable(prefix + '.' + esc(c), false);
				if (partial) return uniqueSelector(partial);
			}
		}
	}
	if (hints.text) {
		const want = hints.text.trim().toLowerCase();
		const clickable = document.querySelectorAll('a, button, [role="button"], input[type="submit"]');
		let best = null, bestScore = -1;
		clickable.forEach(function(el) {
			if (!isVisible(el) || isDisabled(el) || isPreviousControl(el)) return;
			const text = (el.textContent || el.value || '').trim().toLowerCase();
			if (!text) return;
			let score = -1;
			if (text === want) score = 2;
			else if (text.indexOf(want) !== -1 || want.indexOf(text) !== -1) score = 1;
			if (score < 0) return;
			if (el.closest('nav, [class*="paginat"], [class*="pager"], ul')) score += 1;
			if (score > bestScore) { bestScore = score; best = el; }
		});
		if (best) return uniqueSelector(best);
	}
	// Href numeric-parameter pattern: an anchor whose target URL carries a
	// page or offset counter.
	const anchors = document.querySelectorAll('a[href]');
	for (const a of anchors) {
		if (!isVisible(a) || isDisabled(a) || isPreviousControl(a)) continue;
		if (/[?&](page|p|offset|start|o)=\d+/.test(a.href) || /\/page\/\d+/.test(a.href)) {
			return uniqueSelector(a);
		}
	}
	return null;
}`

// scanCandidatesJS is the Candidate Scanner: one synchronous DOM pass that
// locates the product container, scores behavioral load-more controls below
// it, and collects numbered-page and next-arrow links. Scoring and
// exclusion rules live here so the whole pass is atomic; ranking and
// truncation happen on the Go side.
const scanCandidatesJS = `(headerBand) => {
` + selectorHelpersJS + `
	const currencyRe = /[$€£¥₹]|\d+[.,]\d{2}/;
	const moreRe = /\b(load|show|view|see)\s+(\d+\s+)?more\b|\bmore\s+(items|products|results)\b/i;
	const arrowRe = /[→›»⟩>]|\bnext\b/i;
	const navClassRe = /\b(nav|menu|header|footer|breadcrumb|dropdown)\b/i;

	function pageBox(el) {
		const r = el.getBoundingClientRect();
		return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
	}
	function attrs(el) {
		const out = {};
		['id', 'class', 'rel', 'aria-label', 'href', 'type'].forEach(function(name) {
			const v = el.getAttribute(name);
			if (v) out[name] = v.slice(0, 200);
		});
		for (const a of el.attributes) {
			if (a.name.indexOf('data-') === 0 && a.value) out[a.name] = a.value.slice(0, 200);
		}
		return out;
	}
	function excluded(el, box) {
		if (!isVisible(el) || isDisabled(el) || isPreviousControl(el)) return true;
		if (box.y < headerBand) return true; // header chrome, not pagination
		return el.closest('header') !== null;
	}

	// 1. Product container: the grid/list whose direct children most often
	// contain both an image and currency-like text.
	let container = null, containerScore = 0;
	document.querySelectorAll('div, ul, ol, section, main').forEach(function(el) {
		const children = el.children;
		if (children.length < 4) return;
		let productish = 0;
		for (const child of children) {
			const hasImage = !!child.querySelector('img, picture, [style*="background-image"]');
			const hasPrice = currencyRe.test(child.textContent || '');
			if (hasImage && hasPrice) productish++;
		}
		if (productish >= 3 && productish > containerScore) {
			containerScore = productish;
			container = el;
		}
	});
	const containerBox = container ? pageBox(container) : null;
	const containerBottom = containerBox ? containerBox.y + containerBox.height : 0;
	const containerCenterX = containerBox ? containerBox.x + containerBox.width / 2 : window.innerWidth / 2;

	const results = [];

	// 2. Behavioral candidates: clickables at or below the container
	// bottom, scored on position, structure, and vocabulary. Capped at
	// 0.85 so explicit page-2 links always win ties.
	const clickables = document.querySelectorAll('button, a, [role="button"], input[type="submit"]');
	clickables.forEach(function(el) {
		const box = pageBox(el);
		if (excluded(el, box)) return;
		if (container && box.y < containerBottom - 50) return;
		const text = (el.textContent || el.value || '').trim();

		let score = 0;
		if (container) {
			const dist = Math.abs(box.y - containerBottom);
			if (dist < 200) score += 0.25;
			else if (dist < 600) score += 0.15;
			const centerOffset = Math.abs(box.x + box.width / 2 - containerCenterX);
			if (centerOffset < 100) score += 0.15;
		}
		// Spatial isolation: a lone control is more likely pagination
		// than one control in a row of many.
		const parent = el.parentElement;
		if (parent) {
			let siblingControls = 0;
			for (const sib of parent.children) {
				if (sib !== el && sib.matches('button, a, [role="button"]')) siblingControls++;
			}
			if (siblingControls === 0) score += 0.1;
		}
		if (el.tagName === 'BUTTON') score += 0.1;
		if (arrowRe.test(text)) score += 0.1;
		if (text.length > 0 && text.length < 30) score += 0.05;
		if (moreRe.test(text)) score += 0.3;
		if (!text) score -= 0.2;
		if (navClassRe.test(el.className || '')) score -= 0.3;

		if (score < 0.3) return;
		results.push({
			selector: uniqueSelector(el),
			type: 'load_more',
			text: text.slice(0, 80),
			confidence: Math.min(score, 0.85),
			boundingBox: box,
			attributes: attrs(el),
		});
	});

	// 3. Numbered controls inside pagination-labelled containers, or any
	// list of 3-20 short numeric links.
	function numericLinks(scope) {
		const links = Array.from(scope.querySelectorAll('a, button'));
		return links.filter(function(el) {
			const t = (el.textContent || '').trim();
			return t.length > 0 && t.length <= 4 && /^\d+$/.test(t);
		});
	}
	const pagContainers = Array.from(document.querySelectorAll(
		'nav[aria-label*="pag" i], [class*="paginat"], [class*="pager"], [role="navigation"]'));
	if (!pagContainers.length) {
		document.querySelectorAll('ul, ol').forEach(function(list) {
			const nums = numericLinks(list);
			if (nums.length >= 3 && nums.length <= 20) pagContainers.push(list);
		});
	}
	pagContainers.forEach(function(scope) {
		for (const el of scope.querySelectorAll('a, button')) {
			const box = pageBox(el);
			if (excluded(el, box)) continue;
			const text = (el.textContent || '').trim();
			const href = el.getAttribute('href') || '';
			const isPageTwo = text === '2' || /[?&](page|p)=2\b/.test(href) || /\/page\/2\b/.test(href);
			const isNext = el.getAttribute('rel') === 'next' ||
				/\bnext\b/i.test(el.getAttribute('aria-label') || '') || arrowRe.test(text);
			if (isPageTwo) {
				results.push({
					selector: uniqueSelector(el),
					type: 'numbered',
					text: text.slice(0, 80),
					confidence: el.getAttribute('rel') === 'next' ? 0.98 : (href ? 0.95 : 0.9),
					boundingBox: box,
					attributes: attrs(el),
				});
			} else if (isNext) {
				results.push({
					selector: uniqueSelector(el),
					type: 'next_button',
					text: text.slice(0, 80),
					confidence: 0.92,
					boundingBox: box,
					attributes: attrs(el),
				});
			}
		}
	});

	// 4. Arrow/next controls outside pagination containers, at lower
	// confidence.
	clickables.forEach(function(el) {
		if (el.closest('nav[aria-label*="pag" i], [class*="paginat"], [class*="pager"]')) return;
		const box = pageBox(el);
		if (excluded(el, box)) return;
		const text = (el.textContent || '').trim();
		const aria = el.getAttribute('aria-label') || '';
		const rel = el.getAttribute('rel') || '';
		const nextish = rel === 'next' || /\bnext\b/i.test(aria) ||
			/^(next|next\s+page|[→›»])$/i.test(text);
		if (!nextish) return;
		results.push({
			selector: uniqueSelector(el),
			type: 'next_button',
			text: text.slice(0, 80),
			confidence: rel === 'next' ? 0.85 : (aria ? 0.75 : 0.65),
			boundingBox: box,
			attributes: attrs(el),
		});
	});

	return results;
}`
